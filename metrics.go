package obsctl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No session id in labels: one session per process, ids churn on restart.
var (
	sessionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obsctl_session_state",
		Help: "1 for the current session state, 0 otherwise.",
	}, []string{"state"})

	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsctl_session_transitions_total",
		Help: "Total number of session state transitions, by from and to state.",
	}, []string{"from", "to"})

	outputStartFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obsctl_output_start_failures_total",
		Help: "Total number of output start attempts rejected by the engine.",
	})

	engineLogRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsctl_engine_log_records_total",
		Help: "Total number of engine log records, by level.",
	}, []string{"level"})
)

func recordTransition(from, to State) {
	sessionTransitions.WithLabelValues(string(from), string(to)).Inc()
	setStateGauge(to)
}

func setStateGauge(current State) {
	for _, s := range AllStates {
		v := 0.0
		if s == current {
			v = 1
		}
		sessionState.WithLabelValues(string(s)).Set(v)
	}
}
