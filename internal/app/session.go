// Package app is the page controller: one Session per page context owns the
// score store, the view it projects into, the notification and modal
// services, the chart registry and the background chart refresh.
package app

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/okian/skillmatrix/internal/adapters/chartjs"
	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/adapters/mq/queue"
	"github.com/okian/skillmatrix/internal/adapters/mq/worker"
	"github.com/okian/skillmatrix/internal/adapters/repository"
	"github.com/okian/skillmatrix/internal/adapters/view"
	"github.com/okian/skillmatrix/internal/config"
	"github.com/okian/skillmatrix/internal/domain/badge"
	"github.com/okian/skillmatrix/internal/domain/chart"
	"github.com/okian/skillmatrix/internal/domain/dedupe"
	"github.com/okian/skillmatrix/internal/domain/inflight"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/internal/domain/modal"
	"github.com/okian/skillmatrix/internal/domain/notify"
	"github.com/okian/skillmatrix/pkg/logger"
)

// Canvas, section, table and modal names the session draws into.
const (
	CanvasSkills       = "skillsChart"
	CanvasComparison   = "comparisonChart"
	CanvasRoles        = "roleChart"
	CanvasDistribution = "distributionChart"
	CanvasDepartments  = "departmentChart"

	SectionNoComparison = "noComparisonData"

	TableComparison  = "comparison"
	TableSkills      = "skills"
	TableSkillSearch = "skillSearch"
	ListSearch       = "searchResults"
	SelectDepartment = "department"

	ModalAssessment = "assessmentModal"
	ModalUser       = "userModal"
	ModalSkill      = "skillModal"
)

// Backend is the part of the HR API the session calls.
type Backend interface {
	AssessSkill(ctx context.Context, skillID int, score model.Score) (client.SelfResult, error)
	AssessEmployee(ctx context.Context, employeeID, skillID int, score model.Score) (string, error)
	AssessMember(ctx context.Context, employeeID int, changes []model.PendingChange) (string, error)
	UserSkills(ctx context.Context, userID int) (model.User, []model.SkillScores, error)

	Departments(ctx context.Context) ([]model.Department, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	CreateUser(ctx context.Context, in client.UserInput) (int, string, error)
	UpdateUser(ctx context.Context, id int, in client.UserInput) (string, error)
	DeleteUser(ctx context.Context, id int) (string, error)

	Skills(ctx context.Context) ([]client.SkillInfo, error)
	CreateSkill(ctx context.Context, in client.SkillInput) (model.Skill, string, error)
	UpdateSkill(ctx context.Context, id int, in client.SkillInput) (model.Skill, string, error)
	DeleteSkill(ctx context.Context, id int) (string, error)
	RenameCategory(ctx context.Context, name, newName string) (string, error)

	SearchUsers(ctx context.Context, q string) ([]model.User, error)
	SearchBySkill(ctx context.Context, skill string, minScore model.Score) (model.Skill, []model.SkillMatch, error)
	CompareUsers(ctx context.Context, user1, user2 int) (model.Comparison, error)

	DashboardStats(ctx context.Context) (model.Counters, error)
	HRStats(ctx context.Context) (model.HRStats, error)
	Export(ctx context.Context, kind client.ExportKind) ([]byte, error)
}

var _ Backend = (*client.Client)(nil)

// Session is the explicit page context. Create it with New, call Start,
// and Close it on navigation.
type Session struct {
	mu sync.RWMutex

	api        Backend
	cfg        *config.Config
	role       model.Role
	userID     int
	employeeID int
	subject    model.User

	// Core components
	store     repository.Store
	doc       *view.Document
	badges    *badge.Renderer
	guard     *inflight.Guard
	notes     *notify.Service
	modals    *modal.Controller
	confirmer modal.Confirmer
	renderer  *chartjs.Renderer
	charts    *chart.Registry
	validate  *validator.Validate

	// Refresh pipeline
	refreshQueue *queue.InMemoryQueue
	pending      dedupe.Deduper
	scheduler    *worker.Scheduler
	pool         *worker.Pool

	search *debouncer

	lastComparison *model.Comparison
	catalogue      []client.SkillInfo
	outcomes       map[Outcome]int

	clock   clockwork.Clock
	started bool
	closed  bool

	logger logger.Logger
}

// New constructs a Session over api. It is inert until Start.
func New(api Backend, opts ...Option) *Session {
	s := &Session{
		api:      api,
		cfg:      config.New(context.Background()),
		role:     model.RoleEmployee,
		doc:      view.New(),
		clock:    clockwork.NewRealClock(),
		logger:   logger.Nop(),
		outcomes: make(map[Outcome]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = repository.NewScoreStore()
	s.badges = badge.NewRenderer(badge.WithViewer(s.role))
	s.guard = inflight.New()
	s.notes = notify.New(s.doc, notify.Options{
		Duration:    s.cfg.NotifyDuration(),
		Position:    s.cfg.NotifyPosition,
		DedupWindow: s.cfg.NotifyDedupWindow(),
	}, notify.WithClock(s.clock))

	var mopts []modal.Option
	if s.confirmer != nil {
		mopts = append(mopts, modal.WithConfirmer(s.confirmer))
	}
	s.modals = modal.NewController(s.doc, mopts...)

	s.renderer = chartjs.NewRenderer()
	s.charts = chart.NewRegistry(s.renderer)
	s.validate = newValidator()

	s.refreshQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.RefreshQueueSize))
	s.pending = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
	s.scheduler = worker.NewScheduler(s.refreshQueue, s.pending,
		worker.WithDelay(s.cfg.ChartRefreshDelay()),
		worker.WithClock(s.clock),
		worker.WithSchedulerLogger(s.logger),
	)
	s.pool = worker.NewPool(s.cfg.RefreshWorkers, s.refreshQueue, worker.RefreshFunc(s.refresh),
		worker.WithPending(s.pending),
		worker.WithLogger(s.logger),
	)
	s.search = newDebouncer(s.clock, s.cfg.SearchDebounce())

	s.doc.SetReadOnly(s.role.ReadOnly())
	return s
}

// Start launches the chart refresh workers.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	s.pool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "session started",
		logger.String("role", string(s.role)),
		logger.Int("user", s.userID),
		logger.Int("employee", s.employeeID),
		logger.Int("refreshWorkers", s.pool.Size()),
	)
	return nil
}

// Close tears the session down: pending refreshes and searches are
// cancelled, charts destroyed, modals closed without asking, toasts
// dismissed. In-flight submissions still reconcile the store but no longer
// touch the view.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	s.search.Stop()
	s.scheduler.Close()
	var err error
	if started {
		err = s.pool.Shutdown(ctx)
	} else {
		_ = s.refreshQueue.Close()
	}
	if derr := s.charts.DestroyAll(); derr != nil {
		err = errors.Join(err, derr)
	}
	s.modals.CloseAll()
	s.notes.Close()
	s.logger.Info(ctx, "session closed")
	return err
}

// Load fetches the subject's skills, fills the store and projects every row.
func (s *Session) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	user, skills, err := s.api.UserSkills(ctx, s.subjectID())
	if err != nil {
		s.notes.Error(client.Message(err))
		return err
	}

	s.mu.Lock()
	s.subject = user
	s.mu.Unlock()

	s.store.Load(ctx, skills)
	for _, old := range s.doc.Rows() {
		s.doc.RemoveRow(old.Skill().ID)
	}
	for _, ss := range skills {
		row := s.doc.AddRow(ss.Skill)
		s.projectRow(row, ss.Scores)
	}
	if user.FullName != "" {
		s.doc.SetCounter("employee", user.FullName)
	}
	s.doc.SetCounter("skills", strconv.Itoa(len(skills)))

	s.logger.Debug(ctx, "profile loaded", logger.Int("user", user.ID), logger.Int("skills", len(skills)))
	return s.renderSkills(ctx)
}

// Document is the view the session projects into.
func (s *Session) Document() *view.Document { return s.doc }

// Notifications is the shared notification service.
func (s *Session) Notifications() *notify.Service { return s.notes }

// Modals is the modal controller.
func (s *Session) Modals() *modal.Controller { return s.modals }

// Charts publishes the chart documents drawn by the session.
func (s *Session) Charts() *chartjs.Renderer { return s.renderer }

// Refresher schedules delayed, coalesced chart refreshes.
func (s *Session) Refresher() *worker.Scheduler { return s.scheduler }

// Scores returns the current scores in load order.
func (s *Session) Scores(ctx context.Context) []model.SkillScores { return s.store.Snapshot(ctx) }

// Score returns the current scores of skillID.
func (s *Session) Score(ctx context.Context, skillID int) (model.ScoreSet, error) {
	e, err := s.store.Get(ctx, skillID)
	if err != nil {
		return model.ScoreSet{}, err
	}
	return e.Current, nil
}

// GetStats returns session statistics for the status server.
func (s *Session) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	outcomes := make(map[string]int, len(s.outcomes))
	for o, n := range s.outcomes {
		outcomes[o.String()] = n
	}
	return map[string]any{
		"role":                 string(s.role),
		"user":                 s.userID,
		"employee":             s.employeeID,
		"started":              s.started,
		"closed":               s.closed,
		"skills":               s.store.Count(ctx),
		"inFlight":             s.guard.Len(),
		"pendingChanges":       s.modals.Pending(ModalAssessment).Len(),
		"notificationsVisible": len(s.notes.Visible()),
		"chartsLive":           s.charts.Len(),
		"refreshQueueLength":   s.refreshQueue.Len(),
		"submissions":          outcomes,
	}
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// subjectID is whose skills are shown: the selected employee, else the viewer.
func (s *Session) subjectID() int {
	if s.employeeID > 0 {
		return s.employeeID
	}
	return s.userID
}

func (s *Session) projectRow(row *view.Row, scores model.ScoreSet) {
	for _, kind := range []model.RaterKind{model.RaterSelf, model.RaterManager} {
		if err := s.badges.Project(row, kind, scores.Get(kind)); err != nil {
			s.logger.Warn(context.Background(), "badge projection failed", logger.Error(err))
		}
	}
}

func (s *Session) recordOutcome(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[o]++
}

func (s *Session) chartOpts(title string) []chart.Option {
	return []chart.Option{
		chart.WithTitle(title),
		chart.WithLabelMax(s.cfg.ChartLabelMax),
		chart.WithMinShared(s.cfg.CompareMinSkills),
	}
}
