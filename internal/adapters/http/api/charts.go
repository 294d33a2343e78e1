package api

import (
	"net/http"
	"strings"
)

// ChartsHandler publishes chart documents and accepts refresh requests.
type ChartsHandler struct {
	charts    Charts
	refresher Refresher
}

// NewChartsHandler creates a new charts handler. A nil refresher disables
// POST /charts/{canvas}/refresh.
func NewChartsHandler(charts Charts, refresher Refresher) *ChartsHandler {
	return &ChartsHandler{charts: charts, refresher: refresher}
}

type chartList struct {
	Canvases []string `json:"canvases"`
}

// HandleList handles GET /charts.
func (h *ChartsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := chartList{Canvases: []string{}}
	if h.charts != nil {
		out.Canvases = append(out.Canvases, h.charts.Canvases()...)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleChart handles GET /charts/{canvas} and POST /charts/{canvas}/refresh.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	path := strings.TrimPrefix(r.URL.Path, "/charts/")
	canvas, action, _ := strings.Cut(path, "/")
	if canvas == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, canvas)
	case action == "refresh" && r.Method == http.MethodPost:
		h.refresh(w, r, canvas)
	default:
		http.NotFound(w, r)
	}
}

func (h *ChartsHandler) get(w http.ResponseWriter, canvas string) {
	const op = "api.get_chart"
	if h.charts == nil {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	doc, ok := h.charts.Document(canvas)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *ChartsHandler) refresh(w http.ResponseWriter, r *http.Request, canvas string) {
	const op = "api.refresh_chart"
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrNoRefresh))
		return
	}
	if !h.refresher.Schedule(r.Context(), canvas) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "coalesced", Coalesced: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "scheduled"})
}
