// Package metrics exposes ledger session activity to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Metrics holds the journal's Prometheus collectors. It implements
// ledger.Observer.
type Metrics struct {
	TradesTotal   prometheus.Counter
	RebasesTotal  prometheus.Counter
	Rejections    *prometheus.CounterVec // labels: op, reason
	SavesTotal    prometheus.Counter
	SaveFailures  prometheus.Counter
	SaveDuration  prometheus.Histogram
	Balance       prometheus.Gauge
	WSClients     prometheus.Gauge
	QuotesTotal   prometheus.Counter
	LoginFailures prometheus.Counter

	reg *prometheus.Registry
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_trades_appended_total",
			Help: "Trades appended to the ledger",
		}),
		RebasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_rebases_total",
			Help: "Starting balance changes",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradejournal_rejections_total",
			Help: "Mutations rejected (by op and reason)",
		}, []string{"op", "reason"}),
		SavesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_store_saves_total",
			Help: "Ledger saves attempted",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_store_save_failures_total",
			Help: "Ledger saves that failed",
		}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradejournal_store_save_duration_seconds",
			Help:    "Ledger save latency",
			Buckets: prometheus.DefBuckets,
		}),
		Balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradejournal_balance",
			Help: "Current account balance",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradejournal_ws_clients",
			Help: "Connected price stream clients",
		}),
		QuotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_quotes_total",
			Help: "Price quotes sent to stream clients",
		}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradejournal_login_failures_total",
			Help: "Rejected login attempts",
		}),
		reg: prometheus.NewRegistry(),
	}

	m.reg.MustRegister(
		m.TradesTotal,
		m.RebasesTotal,
		m.Rejections,
		m.SavesTotal,
		m.SaveFailures,
		m.SaveDuration,
		m.Balance,
		m.WSClients,
		m.QuotesTotal,
		m.LoginFailures,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Appended(rec ledger.TradeRecord, balance float64) {
	m.TradesTotal.Inc()
	m.Balance.Set(balance)
}

func (m *Metrics) Rebased(start, balance float64) {
	m.RebasesTotal.Inc()
	m.Balance.Set(balance)
}

func (m *Metrics) Rejected(op string, err error) {
	m.Rejections.WithLabelValues(op, reason(err)).Inc()
}

func (m *Metrics) Saved(d time.Duration, err error) {
	m.SavesTotal.Inc()
	m.SaveDuration.Observe(d.Seconds())
	if err != nil {
		m.SaveFailures.Inc()
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrVersionConflict):
		return "conflict"
	case ledger.IsValidation(err):
		return "invalid"
	default:
		return "other"
	}
}
