package observability

import (
	"strconv"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	exports         *prometheus.CounterVec
	auditPurged     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lexflow_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_http_requests_total",
				Help: "HTTP requests by status class.",
			},
			[]string{"class"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_external_errors_total",
				Help: "Total errors from Supabase and other upstreams.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_report_exports_total",
				Help: "Report exports by report kind and format.",
			},
			[]string{"kind", "format"},
		),
		auditPurged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexflow_audit_rows_purged_total",
				Help: "Audit rows deleted by manual cleanup or scheduled retention.",
			},
			[]string{"trigger"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHTTP counts a finished request by status class (2xx, 4xx...).
func (m *Metrics) ObserveHTTP(status int, d time.Duration) {
	m.httpRequests.WithLabelValues(strconv.Itoa(status/100) + "xx").Inc()
	m.requestDuration.WithLabelValues("http").Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(operation string) {
	m.externalErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrExport counts a report export.
func (m *Metrics) IncrExport(kind, format string) {
	m.exports.WithLabelValues(kind, format).Inc()
}

// AddAuditPurged counts deleted audit rows.
func (m *Metrics) AddAuditPurged(trigger string, n int) {
	m.auditPurged.WithLabelValues(trigger).Add(float64(n))
}

// exportLabels are the kind/format pairs reported in the snapshot.
var exportLabels = [][2]string{
	{"receitas", "csv"}, {"receitas", "pdf"},
	{"despesas", "csv"}, {"despesas", "pdf"},
	{"inadimplencia", "csv"}, {"inadimplencia", "pdf"},
	{"balanco", "csv"}, {"balanco", "pdf"},
}

// GetSnapshot returns a snapshot of operational counters for the
// GET /api/admin/metrics endpoint.
func (m *Metrics) GetSnapshot() *domain.OperationalMetrics {
	var total, errs float64
	for _, class := range []string{"2xx", "3xx", "4xx", "5xx"} {
		v := getCounterValue(m.httpRequests.WithLabelValues(class))
		total += v
		if class == "5xx" {
			errs = v
		}
	}
	hits := getCounterValue(m.cacheHits.WithLabelValues("principal"))
	misses := getCounterValue(m.cacheMisses.WithLabelValues("principal"))

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if total > 0 {
		errorRate = errs / total
	}
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	exports := make(map[string]float64, len(exportLabels))
	for _, l := range exportLabels {
		exports[l[0]+"."+l[1]] = getCounterValue(m.exports.WithLabelValues(l[0], l[1]))
	}

	return &domain.OperationalMetrics{
		TotalRequests:  int64(total),
		ErrorRate:      errorRate,
		CacheHitRate:   cacheHitRate,
		ExternalErrors: sumCounterVec(m.externalErrors),
		Exports:        exports,
		AuditPurged:    sumCounterVec(m.auditPurged),
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value of a counter.
func getCounterValue(counter prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds every child of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()
	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err == nil && m.Counter != nil {
			total += m.Counter.GetValue()
		}
	}
	return total
}
