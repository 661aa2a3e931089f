// Package metrics exposes optional Prometheus collectors for navigation
// runs. Callers that scrape them serve promhttp themselves.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	ActionsTotal prometheus.Counter
	TokensTotal  *prometheus.CounterVec
	CostUSDTotal *prometheus.CounterVec
}

// New registers the navigator collectors on reg (use
// prometheus.DefaultRegisterer for the default registry).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_runs_total",
				Help: "Navigation runs by terminal outcome",
			},
			[]string{"outcome"},
		),
		ActionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "navigator_actions_total",
				Help: "UI actions executed across all runs",
			},
		),
		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_tokens_total",
				Help: "Planning-service tokens consumed, by model",
			},
			[]string{"model"},
		),
		CostUSDTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_cost_usd_total",
				Help: "Estimated planning-service spend in USD, by model",
			},
			[]string{"model"},
		),
	}
	reg.MustRegister(m.RunsTotal, m.ActionsTotal, m.TokensTotal, m.CostUSDTotal)
	return m
}
