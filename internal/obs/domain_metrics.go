package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PreviewQuotesTotal counts server-side price previews by kind (cart, price) and result.
	PreviewQuotesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers storefront preview collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PreviewQuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_quotes_total",
			Help:      "Count of price preview requests by kind and result.",
		}, []string{"kind", "result"})
		mustRegisterCollector(reg, PreviewQuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PreviewQuotesTotal = v
			}
		})
	})
}

// ObserveQuote increments PreviewQuotesTotal when domain metrics are registered.
func ObserveQuote(kind, result string) {
	if PreviewQuotesTotal == nil {
		return
	}
	PreviewQuotesTotal.WithLabelValues(kind, result).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
