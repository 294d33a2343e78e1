package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/inflight"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// OpenAssessment opens the manager's assessment dialog for the selected employee.
func (s *Session) OpenAssessment(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.managerCheck(); err != nil {
		return err
	}
	return s.modals.Open(ModalAssessment, map[string]string{
		"employee_id": strconv.Itoa(s.employeeID),
		"employee":    s.subjectName(),
	})
}

// Stage records a manager score in the dialog without sending it.
func (s *Session) Stage(ctx context.Context, skillID int, score model.Score) error {
	if s.isClosed() {
		return ErrClosed
	}
	if !s.modals.IsOpen(ModalAssessment) {
		return fmt.Errorf("stage: %s is not open", ModalAssessment)
	}
	if err := s.precheck(ctx, skillID, score, model.RaterManager); err != nil {
		return err
	}
	s.modals.Pending(ModalAssessment).Stage(skillID, score)
	s.optimistic(skillID, model.RaterManager, score)
	return nil
}

// SaveAssessments sends every staged score in one request. On success the
// scores become confirmed, the dialog closes and the chart is refreshed. On
// failure the staged scores are kept so the user can retry.
func (s *Session) SaveAssessments(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	pending := s.modals.Pending(ModalAssessment)
	changes := pending.Entries()
	if len(changes) == 0 {
		return 0, ErrNothingToSave
	}

	release, _, err := s.guard.Acquire(ctx, "batch/"+strconv.Itoa(s.employeeID))
	if errors.Is(err, inflight.ErrSuperseded) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer release()

	msg, err := s.api.AssessMember(ctx, s.employeeID, changes)
	if err != nil {
		metrics.RecordBatchSave("failed")
		s.notes.Error(client.Message(err))
		s.logger.Warn(ctx, "batch save failed", logger.Int("changes", len(changes)), logger.Error(err))
		return 0, err
	}

	for _, ch := range changes {
		_, v, err := s.store.Apply(ctx, ch.SkillID, model.RaterManager, ch.Score)
		if err != nil {
			s.logger.Warn(ctx, "saved score not in store", logger.Int("skill", ch.SkillID), logger.Error(err))
			continue
		}
		s.reconcile(ctx, ch.SkillID, model.RaterManager, ch.Score, v)
	}
	pending.Discard()
	s.closeQuietly(ctx, ModalAssessment)
	s.notes.Success(nameOr(msg, "Assessments saved"))
	s.scheduleRefresh(ctx, CanvasSkills)
	metrics.RecordBatchSave("success")
	return len(changes), nil
}

// CancelAssessment closes the dialog. Staged scores need confirmation; when
// they are dropped the rows return to their stored scores.
func (s *Session) CancelAssessment(ctx context.Context) error {
	staged := s.modals.Pending(ModalAssessment).Entries()
	if err := s.modals.Close(ctx, ModalAssessment); err != nil {
		return err
	}
	for _, ch := range staged {
		if e, err := s.store.Get(ctx, ch.SkillID); err == nil {
			s.projectKind(ch.SkillID, model.RaterManager, e.Current.Manager)
		}
	}
	return nil
}

func (s *Session) managerCheck() error {
	if s.role != model.RoleManager && s.role != model.RoleAdmin {
		s.notes.Error(ReadOnlyMessage)
		return ErrReadOnly
	}
	if s.employeeID <= 0 {
		return ErrNoEmployee
	}
	return nil
}
