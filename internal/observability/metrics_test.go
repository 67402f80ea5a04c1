package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("test")

	m.RecordRequest("/orders", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/orders", "POST", 201, 5*time.Millisecond)
	m.RecordError("/orders", "POST", "NO_ELIGIBLE_STAFF")
	m.RecordAssignment("round_robin", "assigned")
	m.RecordRotationRetry()
	m.RecordNotification("sent")
	m.RecordNotification("retry")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/orders", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/orders", "POST", "NO_ELIGIBLE_STAFF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assignments.WithLabelValues("round_robin", "assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("retry")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAssignment("least_loaded", "assigned")
		m.RecordRotationRetry()
		m.RecordNotification("sent")
	})
	assert.Nil(t, m.Registry())
}
