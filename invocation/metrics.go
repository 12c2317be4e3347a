package invocation

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the optional, off-by-default observability surface: gas
// consumed per invocation and terminal status counts. HostCalls is
// registered but neither Accumulate nor Refine increments it, so it stays
// at zero. Nil is a valid Metrics-less mode (spec.md §9 "Metrics").
type Metrics struct {
	GasConsumed   prometheus.Histogram
	HostCalls     *prometheus.CounterVec
	TerminalCount *prometheus.CounterVec
}

// NewMetrics registers a fresh Metrics set against reg. Pass a dedicated
// *prometheus.Registry rather than the global default so tests and
// multiple embedders don't collide on metric names.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GasConsumed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jam_invocation_gas_consumed",
			Help:    "Gas consumed per accumulate/refine invocation.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 10),
		}),
		HostCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jam_invocation_host_calls_total",
			Help: "Host calls dispatched, by function id.",
		}, []string{"function"}),
		TerminalCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jam_invocation_terminal_total",
			Help: "Invocations ending in each terminal status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.GasConsumed, m.HostCalls, m.TerminalCount)
	return m
}

func (m *Metrics) observe(gasConsumed uint64, status string) {
	if m == nil {
		return
	}
	m.GasConsumed.Observe(float64(gasConsumed))
	m.TerminalCount.WithLabelValues(status).Inc()
}
