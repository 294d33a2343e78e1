package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for the assessment client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Assessment workflow
	submissions       *prometheus.CounterVec
	submitLatency     *prometheus.HistogramVec
	rollbacks         *prometheus.CounterVec
	guardWaits        prometheus.Counter
	guardSupersedes   prometheus.Counter
	pendingChanges    prometheus.Gauge
	batchSaves        *prometheus.CounterVec
	validationsFailed *prometheus.CounterVec

	// Notifications
	notificationsShown      *prometheus.CounterVec
	notificationsSuppressed *prometheus.CounterVec
	notificationsVisible    prometheus.Gauge

	// Charts
	chartRenders   *prometheus.CounterVec
	chartDestroys  prometheus.Counter
	chartsLive     prometheus.Gauge
	chartUpdates   prometheus.Counter
	chartNotEnough prometheus.Counter

	// Backend API
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Refresh pipeline
	refreshQueueSize     prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshCoalesced     prometheus.Counter
	refreshErrors        prometheus.Counter

	// Status server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillmatrix",
		subsystem:        "client",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(
		m.counterOpts("submissions_total", "Score submissions by rater kind and outcome"),
		[]string{"kind", "outcome"},
	)
	m.submitLatency = auto.NewHistogramVec(
		m.histogramOpts("submit_latency_milliseconds", "Round trip of a score submission in milliseconds"),
		[]string{"kind"},
	)
	m.rollbacks = auto.NewCounterVec(
		m.counterOpts("rollbacks_total", "Optimistic updates rolled back after a failed submission"),
		[]string{"kind", "reason"},
	)
	m.guardWaits = auto.NewCounter(m.counterOpts(
		"inflight_waits_total", "Submissions that waited for an outstanding request on the same key"))
	m.guardSupersedes = auto.NewCounter(m.counterOpts(
		"inflight_superseded_total", "Waiting submissions replaced by a newer click"))
	m.pendingChanges = auto.NewGauge(m.gaugeOpts(
		"pending_changes", "Staged manager scores not yet saved"))
	m.batchSaves = auto.NewCounterVec(
		m.counterOpts("batch_saves_total", "Batch assessment saves by outcome"),
		[]string{"outcome"},
	)
	m.validationsFailed = auto.NewCounterVec(
		m.counterOpts("validation_failures_total", "Forms rejected before any network call"),
		[]string{"form"},
	)

	m.notificationsShown = auto.NewCounterVec(
		m.counterOpts("notifications_shown_total", "Notifications displayed by kind"),
		[]string{"kind"},
	)
	m.notificationsSuppressed = auto.NewCounterVec(
		m.counterOpts("notifications_suppressed_total", "Duplicate notifications suppressed by kind"),
		[]string{"kind"},
	)
	m.notificationsVisible = auto.NewGauge(m.gaugeOpts(
		"notifications_visible", "Notifications currently on screen"))

	m.chartRenders = auto.NewCounterVec(
		m.counterOpts("chart_renders_total", "Chart renders by chart kind"),
		[]string{"chart"},
	)
	m.chartDestroys = auto.NewCounter(m.counterOpts(
		"chart_destroys_total", "Chart instances torn down"))
	m.chartsLive = auto.NewGauge(m.gaugeOpts(
		"charts_live", "Chart instances currently bound to a canvas"))
	m.chartUpdates = auto.NewCounter(m.counterOpts(
		"chart_value_updates_total", "Single-value in-place chart updates"))
	m.chartNotEnough = auto.NewCounter(m.counterOpts(
		"chart_not_enough_data_total", "Comparison charts suppressed for lack of data"))

	m.apiRequests = auto.NewCounterVec(
		m.counterOpts("api_requests_total", "Backend API requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.apiRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("api_request_duration_milliseconds", "Backend API request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.refreshQueueSize = auto.NewGauge(m.gaugeOpts(
		"refresh_queue_size", "Chart refresh jobs waiting in the queue"))
	m.refreshQueueCapacity = auto.NewGauge(m.gaugeOpts(
		"refresh_queue_capacity", "Capacity of the chart refresh queue"))
	m.refreshCoalesced = auto.NewCounter(m.counterOpts(
		"refresh_coalesced_total", "Chart refresh requests merged into an already scheduled one"))
	m.refreshErrors = auto.NewCounter(m.counterOpts(
		"refresh_errors_total", "Chart refresh jobs that failed"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Status server requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "Status server request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "Status server error responses by endpoint, type and severity"),
		[]string{"endpoint", "error_type", "severity"},
	)
}

// RecordSubmission counts a submission outcome for a rater kind.
func RecordSubmission(kind, outcome string) {
	globalManager.submissions.WithLabelValues(kind, outcome).Inc()
}

// RecordSubmitLatency records the round trip of a submission in milliseconds.
func RecordSubmitLatency(kind string, latencyMs float64) {
	globalManager.submitLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordRollback counts a rollback of an optimistic update.
func RecordRollback(kind, reason string) {
	globalManager.rollbacks.WithLabelValues(kind, reason).Inc()
}

// RecordGuardWait counts a submission that queued behind another.
func RecordGuardWait() {
	globalManager.guardWaits.Inc()
}

// RecordGuardSupersede counts a queued submission replaced by a newer one.
func RecordGuardSupersede() {
	globalManager.guardSupersedes.Inc()
}

// UpdatePendingChanges sets the number of staged changes.
func UpdatePendingChanges(n int) {
	globalManager.pendingChanges.Set(float64(n))
}

// RecordBatchSave counts a batch save outcome.
func RecordBatchSave(outcome string) {
	globalManager.batchSaves.WithLabelValues(outcome).Inc()
}

// RecordValidationFailure counts a form rejected client-side.
func RecordValidationFailure(form string) {
	globalManager.validationsFailed.WithLabelValues(form).Inc()
}

// RecordNotificationShown counts a displayed notification.
func RecordNotificationShown(kind string) {
	globalManager.notificationsShown.WithLabelValues(kind).Inc()
}

// RecordNotificationSuppressed counts a deduplicated notification.
func RecordNotificationSuppressed(kind string) {
	globalManager.notificationsSuppressed.WithLabelValues(kind).Inc()
}

// UpdateNotificationsVisible sets the number of notifications on screen.
func UpdateNotificationsVisible(n int) {
	globalManager.notificationsVisible.Set(float64(n))
}

// RecordChartRender counts a chart construction.
func RecordChartRender(chart string) {
	globalManager.chartRenders.WithLabelValues(chart).Inc()
}

// RecordChartDestroy counts a chart teardown.
func RecordChartDestroy() {
	globalManager.chartDestroys.Inc()
}

// UpdateChartsLive sets the number of live chart instances.
func UpdateChartsLive(n int) {
	globalManager.chartsLive.Set(float64(n))
}

// RecordChartValueUpdate counts an in-place dataset update.
func RecordChartValueUpdate() {
	globalManager.chartUpdates.Inc()
}

// RecordChartNotEnoughData counts a suppressed comparison chart.
func RecordChartNotEnoughData() {
	globalManager.chartNotEnough.Inc()
}

// RecordAPIRequest records a backend request and its duration.
func RecordAPIRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.apiRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.apiRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateRefreshQueueSize sets the current refresh queue length.
func UpdateRefreshQueueSize(size int) {
	globalManager.refreshQueueSize.Set(float64(size))
}

// UpdateRefreshQueueCapacity sets the refresh queue capacity.
func UpdateRefreshQueueCapacity(capacity int) {
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// RecordRefreshCoalesced counts a refresh merged into a pending one.
func RecordRefreshCoalesced() {
	globalManager.refreshCoalesced.Inc()
}

// RecordRefreshError counts a failed refresh job.
func RecordRefreshError() {
	globalManager.refreshErrors.Inc()
}

// RecordHTTPRequest records a status server request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records status server request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts a status server error response.
func RecordHTTPError(endpoint, errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType, severity).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
