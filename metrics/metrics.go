// Package metrics exposes Prometheus instrumentation for the bot:
//
//   - bot_orders_total{mode,side}   – orders placed (mode: dry|live)
//   - bot_decisions_total{signal}   – strategy decisions (buy|sell|close|hold)
//   - bot_trades_total{result}      – closed round trips (win|loss|flat)
//   - bot_balance_virtual           – current virtual balance (gauge)
//
// Registered in init() and served at /metrics via Handler().
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed",
		},
		[]string{"mode", "side"},
	)

	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Strategy decisions taken",
		},
		[]string{"signal"},
	)

	trades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_trades_total",
			Help: "Closed round trips by result",
		},
		[]string{"result"},
	)

	balance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_balance_virtual",
			Help: "Virtual account balance",
		},
	)
)

func init() {
	prometheus.MustRegister(orders, decisions, trades, balance)
}

// IncOrder counts an order submission attempt.
func IncOrder(mode, side string) { orders.WithLabelValues(mode, side).Inc() }

// IncDecision counts a per-cycle strategy decision.
func IncDecision(signal string) { decisions.WithLabelValues(signal).Inc() }

// IncTrade counts a closed round trip by outcome.
func IncTrade(realizedPnl float64) {
	switch {
	case realizedPnl > 0:
		trades.WithLabelValues("win").Inc()
	case realizedPnl < 0:
		trades.WithLabelValues("loss").Inc()
	default:
		trades.WithLabelValues("flat").Inc()
	}
}

// SetBalance updates the virtual balance gauge.
func SetBalance(b float64) { balance.Set(b) }

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler { return promhttp.Handler() }
