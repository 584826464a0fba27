package resilience

import "github.com/prometheus/client_golang/prometheus"

// Collectors for outbound sync traffic, labelled by target (for example
// "cart_sync"). They live on the default registry so /metrics exposes them
// without extra wiring.
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "outbound",
		Name:      "breaker_state",
		Help:      "Breaker state per target: 0 closed, 1 open, 2 half-open.",
	}, []string{"target"})

	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "outbound",
		Name:      "breaker_transitions_total",
		Help:      "Breaker state changes per target.",
	}, []string{"target", "from", "to"})

	RequestAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "outbound",
		Name:      "attempts_total",
		Help:      "Outbound HTTP attempts per target and result.",
	}, []string{"target", "result"})
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, RequestAttempts)
}
