// Package api serves the session status: metrics, counters, published
// charts and visible notifications.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/skillmatrix/internal/adapters/chartjs"
	"github.com/okian/skillmatrix/internal/domain/notify"
)

// Charts exposes the published chart documents.
type Charts interface {
	Canvases() []string
	Document(canvas string) (chartjs.Document, bool)
}

// Refresher schedules a chart rebuild. It reports false when the request
// was merged into one already pending.
type Refresher interface {
	Schedule(ctx context.Context, canvas string) bool
}

// Notifications exposes the toasts currently on screen.
type Notifications interface {
	Visible() []notify.Notification
}

// Dependencies bundles what the handlers read from the session.
type Dependencies struct {
	Charts        Charts
	Refresher     Refresher
	Notifications Notifications
	Stats         StatsProvider
	// MaxNotifications caps the limit query of /notifications.
	MaxNotifications int
}

// Server wires HTTP routes for the status API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	chartsHandler        *ChartsHandler
	notificationsHandler *NotificationsHandler
	dashboardHandler     *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	maxN := deps.MaxNotifications
	if maxN < 1 {
		maxN = 50
	}
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(deps.Stats),
		chartsHandler:        NewChartsHandler(deps.Charts, deps.Refresher),
		notificationsHandler: NewNotificationsHandler(deps.Notifications, maxN),
		dashboardHandler:     newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/charts", MetricsMiddleware(s.chartsHandler.HandleList, "charts"))
	mux.HandleFunc("/charts/", MetricsMiddleware(s.chartsHandler.HandleChart, "chart"))
	mux.HandleFunc("/notifications", MetricsMiddleware(s.notificationsHandler.HandleList, "notifications"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Coalesced bool   `json:"coalesced"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
