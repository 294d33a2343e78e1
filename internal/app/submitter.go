package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/adapters/repository"
	"github.com/okian/skillmatrix/internal/domain/inflight"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// Outcome is how a submission ended.
type Outcome int

// Submission outcomes.
const (
	// OutcomeSuccess means the server accepted the score.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeFailed means the request failed and the optimistic state was rolled back.
	OutcomeFailed
	// OutcomeSuperseded means a newer click for the same key replaced this one
	// while it waited; no request was sent.
	OutcomeSuperseded
	// OutcomeBlocked means a client-side check refused the submission; no request was sent.
	OutcomeBlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

const defaultSavedMessage = "Assessment saved"

// RateSelf is a click on the self-assessment button score of skillID.
func (s *Session) RateSelf(ctx context.Context, skillID int, score model.Score) (Outcome, error) {
	return s.Submit(ctx, skillID, score, model.RaterSelf)
}

// RateManager is a click on the manager button score of skillID for the
// selected employee.
func (s *Session) RateManager(ctx context.Context, skillID int, score model.Score) (Outcome, error) {
	return s.Submit(ctx, skillID, score, model.RaterManager)
}

// Submit sends one score. The view shows the clicked value before the
// request goes out; on failure it returns to the last confirmed value.
// Submissions for the same (skill, kind) are serialised and only the
// newest waiting one is sent.
func (s *Session) Submit(ctx context.Context, skillID int, score model.Score, kind model.RaterKind) (Outcome, error) {
	if s.isClosed() {
		return OutcomeBlocked, ErrClosed
	}
	if err := s.precheck(ctx, skillID, score, kind); err != nil {
		metrics.RecordSubmission(string(kind), OutcomeBlocked.String())
		s.recordOutcome(OutcomeBlocked)
		return OutcomeBlocked, err
	}

	_, version, err := s.store.Apply(ctx, skillID, kind, score)
	if err != nil {
		return OutcomeBlocked, fmt.Errorf("apply %s score: %w", kind, err)
	}
	s.optimistic(skillID, kind, score)

	key := strconv.Itoa(skillID) + "/" + string(kind)
	release, waited, err := s.guard.Acquire(ctx, key)
	if waited {
		metrics.RecordGuardWait()
	}
	if errors.Is(err, inflight.ErrSuperseded) {
		s.store.Abandon(ctx, skillID, kind, version)
		metrics.RecordGuardSupersede()
		metrics.RecordSubmission(string(kind), OutcomeSuperseded.String())
		s.recordOutcome(OutcomeSuperseded)
		return OutcomeSuperseded, nil
	}
	if err != nil {
		s.rollback(ctx, skillID, kind, version, "cancelled")
		metrics.RecordSubmission(string(kind), OutcomeFailed.String())
		s.recordOutcome(OutcomeFailed)
		return OutcomeFailed, err
	}
	defer release()

	start := time.Now()
	authoritative, message, err := s.send(ctx, skillID, score, kind)
	metrics.RecordSubmitLatency(string(kind), float64(time.Since(start).Milliseconds()))

	if err != nil {
		s.rollback(ctx, skillID, kind, version, failureReason(err))
		s.notes.Error(client.Message(err))
		metrics.RecordSubmission(string(kind), OutcomeFailed.String())
		s.recordOutcome(OutcomeFailed)
		s.logger.Warn(ctx, "submission failed",
			logger.Int("skill", skillID),
			logger.String("kind", string(kind)),
			logger.Int("score", int(score)),
			logger.Error(err))
		return OutcomeFailed, err
	}

	s.reconcile(ctx, skillID, kind, authoritative, version)
	if message == "" {
		message = defaultSavedMessage
	}
	s.notes.Success(message)
	s.scheduleRefresh(ctx, CanvasSkills)
	metrics.RecordSubmission(string(kind), OutcomeSuccess.String())
	s.recordOutcome(OutcomeSuccess)
	return OutcomeSuccess, nil
}

// precheck refuses what the server would refuse anyway, before any request.
func (s *Session) precheck(ctx context.Context, skillID int, score model.Score, kind model.RaterKind) error {
	if !kind.Submittable() {
		return fmt.Errorf("%w: %s", repository.ErrReadOnlyKind, kind)
	}
	if !score.Valid() {
		s.notes.Error(ErrInvalidScore.Error())
		return fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	if s.role.ReadOnly() {
		s.notes.Error(ReadOnlyMessage)
		return ErrReadOnly
	}
	entry, err := s.store.Get(ctx, skillID)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrNotLoaded, skillID)
	}
	if kind == model.RaterManager {
		if s.role != model.RoleManager && s.role != model.RoleAdmin {
			s.notes.Error(ReadOnlyMessage)
			return ErrReadOnly
		}
		if s.employeeID <= 0 {
			return ErrNoEmployee
		}
		if !entry.Current.Self.IsSet() {
			s.notes.Error(SelfFirstMessage)
			return ErrSelfFirst
		}
	}
	return nil
}

func (s *Session) send(ctx context.Context, skillID int, score model.Score, kind model.RaterKind) (model.Score, string, error) {
	if kind == model.RaterSelf {
		res, err := s.api.AssessSkill(ctx, skillID, score)
		if err != nil {
			return 0, "", err
		}
		return res.Score, res.Message, nil
	}
	msg, err := s.api.AssessEmployee(ctx, s.employeeID, skillID, score)
	if err != nil {
		return 0, "", err
	}
	return score, msg, nil
}

// optimistic marks the clicked button; a manager click also updates the level text.
func (s *Session) optimistic(skillID int, kind model.RaterKind, score model.Score) {
	if s.isClosed() {
		return
	}
	row, ok := s.doc.Row(skillID)
	if !ok || !row.Attached() {
		return
	}
	row.SetActive(kind, score)
	if kind == model.RaterManager {
		row.SetLevelText(kind, s.badges.LevelText(kind, score))
	}
}

func (s *Session) rollback(ctx context.Context, skillID int, kind model.RaterKind, v repository.Version, reason string) {
	current, applied, err := s.store.Rollback(ctx, skillID, kind, v)
	if err != nil {
		s.logger.Warn(ctx, "rollback failed", logger.Int("skill", skillID), logger.Error(err))
		return
	}
	metrics.RecordRollback(string(kind), reason)
	if applied {
		s.projectKind(skillID, kind, current.Get(kind))
	}
}

func (s *Session) reconcile(ctx context.Context, skillID int, kind model.RaterKind, score model.Score, v repository.Version) {
	current, applied, err := s.store.Confirm(ctx, skillID, kind, score, v)
	if err != nil {
		s.logger.Warn(ctx, "reconcile failed", logger.Int("skill", skillID), logger.Error(err))
		return
	}
	if !applied {
		return
	}
	s.projectKind(skillID, kind, current.Get(kind))
	s.updateSkillPoint(ctx, skillID, kind, current.Get(kind))
}

// projectKind writes one score to the row unless the session is closed or
// the row is gone.
func (s *Session) projectKind(skillID int, kind model.RaterKind, score model.Score) {
	if s.isClosed() {
		return
	}
	row, ok := s.doc.Row(skillID)
	if !ok || !row.Attached() {
		return
	}
	if err := s.badges.Project(row, kind, score); err != nil {
		s.logger.Warn(context.Background(), "badge projection failed", logger.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, client.ErrTransport):
		return "transport"
	case errors.Is(err, client.ErrConflict):
		return "conflict"
	case errors.Is(err, client.ErrValidation):
		return "validation"
	case errors.Is(err, client.ErrApplication):
		return "application"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
