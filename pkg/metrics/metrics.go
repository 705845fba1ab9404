package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream ads API metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamFailures *prometheus.CounterVec

	// Insight pipeline metrics
	InsightRecordsFetched *prometheus.CounterVec
	Reconciliations       *prometheus.CounterVec
	InsightCacheLookups   *prometheus.CounterVec

	// Report metrics
	ReportsSaved      prometheus.Counter
	ShareLinksCreated prometheus.Counter
	ShareLinkChecks   *prometheus.CounterVec
	PDFRenders        *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		UpstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_calls_total",
				Help: "Total number of calls to the ads platform API",
			},
			[]string{"endpoint", "status"},
		),

		UpstreamDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_api_duration_seconds",
				Help:    "Ads platform API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		UpstreamFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_failures_total",
				Help: "Total number of ads platform API failures",
			},
			[]string{"endpoint", "error_type"},
		),

		InsightRecordsFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_records_fetched_total",
				Help: "Total number of insight records fetched from the platform",
			},
			[]string{"level"},
		),

		Reconciliations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_reconciliations_total",
				Help: "Total number of daily-series reconciliations performed",
			},
			[]string{"level", "preset"},
		),

		InsightCacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_cache_lookups_total",
				Help: "Insight cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		ReportsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reports_saved_total",
				Help: "Total number of insight reports persisted",
			},
		),

		ShareLinksCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "share_links_created_total",
				Help: "Total number of share links issued",
			},
		),

		ShareLinkChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "share_link_checks_total",
				Help: "Share link validations by outcome",
			},
			[]string{"outcome"},
		),

		PDFRenders: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_renders_total",
				Help: "PDF report renders by outcome",
			},
			[]string{"status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Upstream API call metrics
func (m *Metrics) RecordUpstreamCall(endpoint, status string, duration time.Duration) {
	m.UpstreamCalls.WithLabelValues(endpoint, status).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Upstream API failure metrics
func (m *Metrics) RecordUpstreamFailure(endpoint, errorType string) {
	m.UpstreamFailures.WithLabelValues(endpoint, errorType).Inc()
}

// Insight fetch metrics
func (m *Metrics) RecordInsightRecords(level string, count int) {
	m.InsightRecordsFetched.WithLabelValues(level).Add(float64(count))
}

// Reconciliation metrics
func (m *Metrics) RecordReconciliation(level, preset string) {
	m.Reconciliations.WithLabelValues(level, preset).Inc()
}

// Cache lookup metrics
func (m *Metrics) RecordCacheLookup(outcome string) {
	m.InsightCacheLookups.WithLabelValues(outcome).Inc()
}

// Report persistence metrics
func (m *Metrics) RecordReportSaved() {
	m.ReportsSaved.Inc()
}

// Share link metrics
func (m *Metrics) RecordShareLinkCreated() {
	m.ShareLinksCreated.Inc()
}

func (m *Metrics) RecordShareLinkCheck(outcome string) {
	m.ShareLinkChecks.WithLabelValues(outcome).Inc()
}

// PDF render metrics
func (m *Metrics) RecordPDFRender(status string) {
	m.PDFRenders.WithLabelValues(status).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
