package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.ChargingMetrics
	require.NotPanics(t, func() {
		m.ObserveRequest("initial")
		m.ObserveAnswer(2001)
		m.ObserveRejection(5005)
		m.ObserveAbandoned()
		m.ObserveStaleCallback()
		m.ObserveSendFailure()
		m.SessionPending()
		m.SessionReleased()
	})
}

func TestChargingMetrics(t *testing.T) {
	m := metrics.NewUnregisteredChargingMetrics()

	m.ObserveRequest("initial")
	m.ObserveRequest("initial")
	m.ObserveAnswer(4012)
	m.ObserveAbandoned()
	m.SessionPending()
	m.SessionPending()
	m.SessionReleased()

	require.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("initial")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Answers.WithLabelValues("4012")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Abandoned))
	require.Equal(t, float64(1), testutil.ToFloat64(m.PendingSessions))
}
