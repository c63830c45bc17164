package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics records journey event ingestion outcomes.
type IngestMetrics struct {
	recorded *prometheus.CounterVec
	failed   *prometheus.CounterVec
	dropped  prometheus.Counter
}

// NewIngestMetrics registers the ingest metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journey_events_recorded",
		Help: "Journey events appended to the store.",
	}, []string{"action"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journey_events_failed",
		Help: "Journey events that could not be appended.",
	}, []string{"action"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "journey_events_dropped",
		Help: "Journey events rejected before reaching the store.",
	})
	reg.MustRegister(recorded, failed, dropped)
	return &IngestMetrics{
		recorded: recorded,
		failed:   failed,
		dropped:  dropped,
	}
}

// IncRecorded increments the recorded counter for the action.
func (i *IngestMetrics) IncRecorded(action string) {
	if i == nil || i.recorded == nil {
		return
	}
	i.recorded.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncFailed increments the failure counter for the action.
func (i *IngestMetrics) IncFailed(action string) {
	if i == nil || i.failed == nil {
		return
	}
	i.failed.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncDropped increments the dropped counter.
func (i *IngestMetrics) IncDropped() {
	if i == nil || i.dropped == nil {
		return
	}
	i.dropped.Inc()
}
