package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrderCalcTotal counts order total calculations by outcome.
	OrderCalcTotal *prometheus.CounterVec
	// OrderCalcDuration records end-to-end calculation latency in milliseconds.
	OrderCalcDuration prometheus.Histogram
	// SettingsFallbackTotal counts settings fetches that degraded to defaults.
	SettingsFallbackTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrderCalcTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_calculations_total",
			Help:      "Count of order total calculations by outcome.",
		}, []string{"result"})
		OrderCalcDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_calculation_duration_ms",
			Help:      "Latency of order total calculations in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		})
		SettingsFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_fallback_total",
			Help:      "Count of settings fetches that fell back to platform defaults.",
		}, []string{"scope"})

		OrderCalcTotal = register(reg, OrderCalcTotal)
		OrderCalcDuration = register(reg, OrderCalcDuration)
		SettingsFallbackTotal = register(reg, SettingsFallbackTotal)
	})
}
