// Package metrics holds the Prometheus collectors for the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "paygate"

// Metrics records ledger activity. A nil *Metrics is valid and records
// nothing, which keeps services usable without a registry.
type Metrics struct {
	registry *prometheus.Registry

	transactions    *prometheus.CounterVec
	disbursements   prometheus.Counter
	disbursedAmount prometheus.Counter
	adjustments     *prometheus.CounterVec
	settledTasks    *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions by the status they moved to.",
		}, []string{"status"}),
		disbursements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursements_total",
			Help:      "Completed disbursements.",
		}),
		disbursedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursed_amount_total",
			Help:      "Money removed from transaction balances by disbursements.",
		}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_adjustments_total",
			Help:      "Administrative wallet adjustments by type.",
		}, []string{"type"}),
		settledTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_tasks_total",
			Help:      "Scheduled settlement tasks closed by the runner.",
		}, []string{"outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.transactions,
		m.disbursements,
		m.disbursedAmount,
		m.adjustments,
		m.settledTasks,
		m.rpcDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TransactionStatus counts a transaction reaching status.
func (m *Metrics) TransactionStatus(status string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(status).Inc()
}

// Disbursed counts one payout of amount.
func (m *Metrics) Disbursed(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.disbursements.Inc()
	m.disbursedAmount.Add(amount.InexactFloat64())
}

// Adjusted counts a wallet adjustment of the given type.
func (m *Metrics) Adjusted(kind string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(kind).Inc()
}

// TaskClosed counts a settlement task closed with outcome ("settled" or
// "skipped").
func (m *Metrics) TaskClosed(outcome string) {
	if m == nil {
		return
	}
	m.settledTasks.WithLabelValues(outcome).Inc()
}

// ObserveRPC records the latency of one call.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}
