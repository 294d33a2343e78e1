package app

import (
	"context"
	"errors"
	"strconv"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/chart"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// Compare loads the side-by-side scores of two employees. The table lists
// every shared skill; the radar overlay is drawn only when enough skills are
// rated for both, otherwise the chart section is hidden and the "not enough
// data" section is shown instead.
func (s *Session) Compare(ctx context.Context, user1, user2 int) (model.Comparison, error) {
	if s.isClosed() {
		return model.Comparison{}, ErrClosed
	}
	cmp, err := s.api.CompareUsers(ctx, user1, user2)
	if err != nil {
		s.notes.Error(client.Message(err))
		return model.Comparison{}, err
	}

	s.doc.SetTable(TableComparison, comparisonTable(cmp))

	s.mu.Lock()
	s.lastComparison = &cmp
	s.mu.Unlock()

	if err := s.renderComparison(ctx, cmp); err != nil {
		return cmp, err
	}
	return cmp, nil
}

func (s *Session) renderComparison(ctx context.Context, cmp model.Comparison) error {
	cfg, err := chart.BuildComparison(cmp, s.chartOpts("Skill comparison")...)
	if errors.Is(err, chart.ErrNotEnoughData) || errors.Is(err, chart.ErrNoData) {
		metrics.RecordChartNotEnoughData()
		if derr := s.charts.Destroy(CanvasComparison); derr != nil {
			return derr
		}
		s.doc.SetSectionVisible(CanvasComparison, false)
		s.doc.SetSectionVisible(SectionNoComparison, true)
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.show(ctx, CanvasComparison, cfg, nil); err != nil {
		return err
	}
	s.doc.SetSectionVisible(SectionNoComparison, false)
	return nil
}

func comparisonTable(cmp model.Comparison) [][]string {
	rows := make([][]string, 0, len(cmp.Rows)+1)
	rows = append(rows, []string{"Skill", "Category", nameOr(cmp.User1.FullName, "User 1"), nameOr(cmp.User2.FullName, "User 2"), "Difference"})
	for _, r := range cmp.Rows {
		diff := "—"
		if r.BothRated() {
			diff = strconv.Itoa(r.Difference)
			if r.Difference > 0 {
				diff = "+" + diff
			}
		}
		rows = append(rows, []string{r.SkillName, r.Category, scoreCell(r.User1Score), scoreCell(r.User2Score), diff})
	}
	return rows
}

func scoreCell(s model.Score) string {
	if !s.IsSet() {
		return "—"
	}
	return strconv.Itoa(int(s))
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
