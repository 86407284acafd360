package guard

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for budget guards.
//
// Collectors register on the default registry once per process; every
// Guard instance shares them, distinguished by the "instance" label.
type Metrics struct {
	attributedCalls *prometheus.CounterVec
	attributedCost  *prometheus.CounterVec
	budgetUsage     *prometheus.GaugeVec
	budgetTrips     *prometheus.CounterVec
	ledgerFallbacks *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics returns the process-wide guard metrics, creating and
// registering the collectors on first call.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			attributedCalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentguard_attributed_calls_total",
					Help: "Total number of API calls attributed a cost",
				},
				[]string{"instance", "shape"},
			),

			attributedCost: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentguard_attributed_cost_usd_total",
					Help: "Total attributed cost in USD",
				},
				[]string{"instance", "model"},
			),

			budgetUsage: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "agentguard_budget_usage_ratio",
					Help: "Current spend as a fraction of the budget limit (0.0-1.0+)",
				},
				[]string{"instance"},
			),

			budgetTrips: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentguard_budget_trips_total",
					Help: "Total number of budget trip events",
				},
				[]string{"instance", "mode"},
			),

			ledgerFallbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentguard_ledger_fallbacks_total",
					Help: "Total number of shared-ledger failures that fell back to local accounting",
				},
				[]string{"instance"},
			),
		}
	})
	return sharedMetrics
}

// RecordCall records one attributed call.
func (m *Metrics) RecordCall(instance string, shape string, model string, cost float64) {
	m.attributedCalls.WithLabelValues(instance, shape).Inc()
	m.attributedCost.WithLabelValues(instance, model).Add(cost)
}

// UpdateUsage updates the budget usage gauge.
func (m *Metrics) UpdateUsage(instance string, total, limit float64) {
	if limit <= 0 {
		return
	}
	m.budgetUsage.WithLabelValues(instance).Set(total / limit)
}

// RecordTrip records a budget trip event.
func (m *Metrics) RecordTrip(instance string, mode string) {
	m.budgetTrips.WithLabelValues(instance, mode).Inc()
}

// RecordLedgerFallback records a shared-ledger degradation.
func (m *Metrics) RecordLedgerFallback(instance string) {
	m.ledgerFallbacks.WithLabelValues(instance).Inc()
}
