package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records report generation and cache behavior.
type ReportMetrics struct {
	duration  *prometheus.HistogramVec
	cacheHit  *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
}

// NewReportMetrics registers the report metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_duration_seconds",
		Help:    "Duration of report assembly in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	cacheHit := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_hits",
		Help: "Report responses served from cache.",
	}, []string{"report"})
	cacheMiss := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_misses",
		Help: "Report responses assembled from the store.",
	}, []string{"report"})
	reg.MustRegister(duration, cacheHit, cacheMiss)
	return &ReportMetrics{
		duration:  duration,
		cacheHit:  cacheHit,
		cacheMiss: cacheMiss,
	}
}

// ObserveDuration records assembly time for the named report.
func (r *ReportMetrics) ObserveDuration(report string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(report)).Observe(duration.Seconds())
}

// IncCacheHit increments the cache-hit counter for the named report.
func (r *ReportMetrics) IncCacheHit(report string) {
	if r == nil || r.cacheHit == nil {
		return
	}
	r.cacheHit.WithLabelValues(normalizeLabel(report)).Inc()
}

// IncCacheMiss increments the cache-miss counter for the named report.
func (r *ReportMetrics) IncCacheMiss(report string) {
	if r == nil || r.cacheMiss == nil {
		return
	}
	r.cacheMiss.WithLabelValues(normalizeLabel(report)).Inc()
}

func normalizeLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
