package cartsync

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts background sync outcomes.
type Metrics struct {
	Total *prometheus.CounterVec
}

// NewMetrics registers the sync counter on reg, reusing an existing collector
// when one is already registered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_sync_total",
		Help:      "Cart quantity syncs by outcome.",
	}, []string{"outcome"})
	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		total = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return &Metrics{Total: total}
}

func (m *Metrics) observe(outcome string) {
	if m == nil || m.Total == nil {
		return
	}
	m.Total.WithLabelValues(outcome).Inc()
}
