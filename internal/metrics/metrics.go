package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/free5gc/ocs/internal/logger"
)

// ChargingMetrics tracks the charging-session state machine.
//
// All metrics use the "ocs_charging_" prefix. Methods handle a nil receiver,
// so a nil *ChargingMetrics disables collection.
type ChargingMetrics struct {
	// Requests counts credit-control requests by request type.
	// Labels: kind=[initial, update, termination, event, unknown]
	Requests *prometheus.CounterVec

	// Answers counts transmitted answers by overall result code.
	Answers *prometheus.CounterVec

	// Rejections counts requests answered without dispatching a reservation.
	// Labels: result_code
	Rejections *prometheus.CounterVec

	// Abandoned counts sessions force-ended by the liveness timer.
	Abandoned prometheus.Counter

	// StaleCallbacks counts discarded reservation outcomes.
	StaleCallbacks prometheus.Counter

	// SendFailures counts answers the transport failed to deliver.
	SendFailures prometheus.Counter

	// PendingSessions is the number of sessions awaiting reservation outcomes.
	PendingSessions prometheus.Gauge
}

var (
	chargingMetricsOnce     sync.Once
	chargingMetricsInstance *ChargingMetrics
)

// NewChargingMetrics creates and registers the collectors once per process.
// A nil registerer means prometheus.DefaultRegisterer.
func NewChargingMetrics(registerer prometheus.Registerer) *ChargingMetrics {
	chargingMetricsOnce.Do(func() {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}
		chargingMetricsInstance = newChargingMetrics()
		registerer.MustRegister(
			chargingMetricsInstance.Requests,
			chargingMetricsInstance.Answers,
			chargingMetricsInstance.Rejections,
			chargingMetricsInstance.Abandoned,
			chargingMetricsInstance.StaleCallbacks,
			chargingMetricsInstance.SendFailures,
			chargingMetricsInstance.PendingSessions,
		)
		logger.MetricsLog.Info("Charging metrics registered")
	})
	return chargingMetricsInstance
}

// NewUnregisteredChargingMetrics is meant for tests that read values back
// without touching the global registry.
func NewUnregisteredChargingMetrics() *ChargingMetrics {
	return newChargingMetrics()
}

func newChargingMetrics() *ChargingMetrics {
	return &ChargingMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocs_charging_requests_total",
				Help: "Total credit-control requests by request type",
			},
			[]string{"kind"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocs_charging_answers_total",
				Help: "Total credit-control answers by result code",
			},
			[]string{"result_code"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocs_charging_rejections_total",
				Help: "Total requests rejected before any reservation",
			},
			[]string{"result_code"},
		),
		Abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ocs_charging_abandoned_sessions_total",
			Help: "Total sessions ended by the liveness timer",
		}),
		StaleCallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ocs_charging_stale_callbacks_total",
			Help: "Total reservation outcomes discarded as stale or duplicate",
		}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ocs_charging_send_failures_total",
			Help: "Total answers that could not be transmitted",
		}),
		PendingSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ocs_charging_pending_sessions",
			Help: "Sessions currently awaiting reservation outcomes",
		}),
	}
}

func (m *ChargingMetrics) ObserveRequest(kind string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(kind).Inc()
}

func (m *ChargingMetrics) ObserveAnswer(resultCode uint32) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(strconv.FormatUint(uint64(resultCode), 10)).Inc()
}

func (m *ChargingMetrics) ObserveRejection(resultCode uint32) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(strconv.FormatUint(uint64(resultCode), 10)).Inc()
}

func (m *ChargingMetrics) ObserveAbandoned() {
	if m == nil {
		return
	}
	m.Abandoned.Inc()
}

func (m *ChargingMetrics) ObserveStaleCallback() {
	if m == nil {
		return
	}
	m.StaleCallbacks.Inc()
}

func (m *ChargingMetrics) ObserveSendFailure() {
	if m == nil {
		return
	}
	m.SendFailures.Inc()
}

func (m *ChargingMetrics) SessionPending() {
	if m == nil {
		return
	}
	m.PendingSessions.Inc()
}

func (m *ChargingMetrics) SessionReleased() {
	if m == nil {
		return
	}
	m.PendingSessions.Dec()
}
