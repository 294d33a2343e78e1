package api

import (
	"net/http"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/notify"
)

// NotificationsHandler lists the toasts currently visible.
type NotificationsHandler struct {
	source   Notifications
	maxLimit int
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(source Notifications, maxLimit int) *NotificationsHandler {
	return &NotificationsHandler{source: source, maxLimit: maxLimit}
}

// HandleList handles GET /notifications[?limit=N]. Oldest first.
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_notifications"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	out := []notify.Notification{}
	if h.source != nil {
		out = append(out, h.source.Visible()...)
	}
	if len(out) > n {
		out = out[:n]
	}
	writeJSON(w, http.StatusOK, out)
}
