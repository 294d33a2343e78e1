package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/skillmatrix/internal/domain/chart"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
)

// scheduleRefresh asks for a delayed rebuild of canvas. Requests for a
// canvas that already has one pending are merged.
func (s *Session) scheduleRefresh(ctx context.Context, canvas string) {
	if s.isClosed() {
		return
	}
	if !s.scheduler.Schedule(ctx, canvas) {
		s.logger.Debug(ctx, "chart refresh coalesced", logger.String("canvas", canvas))
	}
}

// refresh is run by the refresh workers.
func (s *Session) refresh(ctx context.Context, canvas string) error {
	if s.isClosed() {
		return nil
	}
	switch canvas {
	case CanvasSkills:
		return s.renderSkills(ctx)
	case CanvasComparison:
		s.mu.RLock()
		cmp := s.lastComparison
		s.mu.RUnlock()
		if cmp == nil {
			return nil
		}
		return s.renderComparison(ctx, *cmp)
	case CanvasRoles, CanvasDistribution, CanvasDepartments:
		st, err := s.api.HRStats(ctx)
		if err != nil {
			return err
		}
		return s.renderHRCharts(ctx, st)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCanvas, canvas)
	}
}

// renderSkills draws the radar of the store's current scores. A profile
// with nothing rated hides the chart.
func (s *Session) renderSkills(ctx context.Context) error {
	cfg, err := chart.BuildSkillRadar(s.store.Snapshot(ctx), s.chartOpts(s.subjectName())...)
	return s.show(ctx, CanvasSkills, cfg, err)
}

// show renders cfg on canvas, or hides the section when there is nothing to draw.
func (s *Session) show(ctx context.Context, canvas string, cfg chart.Config, buildErr error) error {
	if errors.Is(buildErr, chart.ErrNoData) {
		if err := s.charts.Destroy(canvas); err != nil {
			return err
		}
		s.doc.SetSectionVisible(canvas, false)
		return nil
	}
	if buildErr != nil {
		return buildErr
	}
	if s.isClosed() {
		return nil
	}
	if _, err := s.charts.Render(ctx, canvas, cfg); err != nil {
		return err
	}
	s.doc.SetSectionVisible(canvas, true)
	return nil
}

// updateSkillPoint changes one radar point in place when the skill is
// already plotted. Skills not yet plotted wait for the scheduled rebuild.
func (s *Session) updateSkillPoint(ctx context.Context, skillID int, kind model.RaterKind, score model.Score) {
	inst, ok := s.charts.Live(CanvasSkills)
	if !ok {
		return
	}
	i, ok := inst.Config().IndexOf(skillID)
	if !ok {
		return
	}
	dataset := 0
	if kind == model.RaterManager {
		dataset = 1
	}
	if err := s.charts.UpdateValue(CanvasSkills, dataset, i, float64(score)); err != nil {
		s.logger.Debug(ctx, "chart point update skipped", logger.Error(err))
	}
}

func (s *Session) renderHRCharts(ctx context.Context, st model.HRStats) error {
	roles, err := chart.BuildRoleDistribution(st.Roles, chart.WithTitle("Users by role"))
	if err := s.show(ctx, CanvasRoles, roles, err); err != nil {
		return err
	}
	dist, err := chart.BuildDistribution(st.Distribution, chart.WithTitle("Score distribution"))
	if err := s.show(ctx, CanvasDistribution, dist, err); err != nil {
		return err
	}
	deps, err := chart.BuildDepartmentAverages(st.Departments, s.chartOpts("Average score by department")...)
	return s.show(ctx, CanvasDepartments, deps, err)
}

func (s *Session) subjectName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject.FullName
}
