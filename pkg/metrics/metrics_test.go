package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)

	m.IncRecorded("purchased")
	m.IncRecorded("purchased")
	m.IncRecorded("viewed")
	m.IncFailed("viewed")
	m.IncDropped()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.recorded.WithLabelValues("purchased")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.recorded.WithLabelValues("viewed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failed.WithLabelValues("viewed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dropped))
}

func TestReportMetricsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReportMetrics(reg)

	m.ObserveDuration("journey", 120*time.Millisecond)
	m.IncCacheMiss("journey")
	m.IncCacheHit("journey")

	families, err := reg.Gather()
	require.NoError(t, err)

	var hist *dto.MetricFamily
	for _, fam := range families {
		if fam.GetName() == "report_duration_seconds" {
			hist = fam
		}
	}
	require.NotNil(t, hist)
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheHit.WithLabelValues("journey")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheMiss.WithLabelValues("journey")))
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewIngestMetrics(nil)
	m.IncRecorded("purchased")
	m.IncDropped()

	r := NewReportMetrics(nil)
	r.ObserveDuration("journey", time.Second)
	r.IncCacheHit("journey")
}
