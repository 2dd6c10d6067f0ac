package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordURLProcessed(t *testing.T) {
	URLsProcessed.Reset()

	outcomes := []string{"success", "failed", "skipped", "success"}
	for _, outcome := range outcomes {
		RecordURLProcessed(outcome)
	}

	assert.Equal(t, 2.0, getCounterValue(t, URLsProcessed, "success"))
	assert.Equal(t, 1.0, getCounterValue(t, URLsProcessed, "failed"))
	assert.Equal(t, 1.0, getCounterValue(t, URLsProcessed, "skipped"))
}

func TestRecordFetchAttemptAndRetry(t *testing.T) {
	FetchAttempts.Reset()
	FetchRetries.Reset()

	RecordFetchAttempt("mobile")
	RecordFetchAttempt("mobile")
	RecordFetchAttempt("desktop")
	RecordFetchRetry("mobile")

	assert.Equal(t, 2.0, getCounterValue(t, FetchAttempts, "mobile"))
	assert.Equal(t, 1.0, getCounterValue(t, FetchAttempts, "desktop"))
	assert.Equal(t, 1.0, getCounterValue(t, FetchRetries, "mobile"))
}

func TestRecordFetchDuration(t *testing.T) {
	FetchDuration.Reset()

	durations := []time.Duration{
		500 * time.Millisecond,
		2 * time.Second,
		30 * time.Second,
	}
	for _, d := range durations {
		RecordFetchDuration("mobile", d)
	}

	metric := getHistogramMetric(t, FetchDuration, "mobile")
	assert.Equal(t, uint64(len(durations)), metric.Histogram.GetSampleCount())
	assert.InDelta(t, 32.5, metric.Histogram.GetSampleSum(), 0.001)
}

func TestRecordRun(t *testing.T) {
	RunsTotal.Reset()

	RecordRun("ok", time.Minute)
	RecordRun("partial_failure", 2*time.Minute)
	RecordRun("ok", 30*time.Second)

	assert.Equal(t, 2.0, getCounterValue(t, RunsTotal, "ok"))
	assert.Equal(t, 1.0, getCounterValue(t, RunsTotal, "partial_failure"))
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/api/runs/latest", "200", 50*time.Millisecond)
	RecordHTTPRequest("GET", "/api/runs/latest", "200", 75*time.Millisecond)
	RecordHTTPRequest("GET", "/api/vitals/:id", "404", 10*time.Millisecond)

	assert.Equal(t, 2.0, getCounterValue(t, HTTPRequestsTotal, "GET", "/api/runs/latest", "200"))
	assert.Equal(t, 1.0, getCounterValue(t, HTTPRequestsTotal, "GET", "/api/vitals/:id", "404"))

	metric := getHistogramMetric(t, HTTPRequestDuration, "GET", "/api/runs/latest")
	assert.Equal(t, uint64(2), metric.Histogram.GetSampleCount())
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := counter.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	err = observer.Write(metric)
	require.NoError(t, err)
	return metric.Counter.GetValue()
}

func getHistogramMetric(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) *dto.Metric {
	metric := &dto.Metric{}
	observer, err := histogram.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	h := observer.(prometheus.Histogram)
	err = h.Write(metric)
	require.NoError(t, err)
	return metric
}
