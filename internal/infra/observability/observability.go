// Package observability defines the Prometheus metrics exported by the
// timer engine and its storage adapter. Metrics are registered on the
// default registry and served by the API at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Engine Metrics ─────────────────────────────────────────────────────────

// TimerTransitions tracks mode transitions by target mode.
var TimerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "timer",
	Name:      "transitions_total",
	Help:      "Total mode transitions by target mode.",
}, []string{"mode"})

// TimerAutoStops tracks automatic stops by bound.
var TimerAutoStops = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "timer",
	Name:      "auto_stops_total",
	Help:      "Total automatic stops on saturation or depletion.",
}, []string{"reason"})

// TimerBalance tracks the last reconciled balance.
var TimerBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "timebank",
	Subsystem: "timer",
	Name:      "balance_ms",
	Help:      "Last reconciled balance in milliseconds.",
})

// TimerProjectedBalance tracks the balance shown by the last projection tick.
var TimerProjectedBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "timebank",
	Subsystem: "timer",
	Name:      "projected_balance_ms",
	Help:      "Balance rendered by the most recent projection tick.",
})

// TimerTicks tracks projection ticks processed.
var TimerTicks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "timer",
	Name:      "ticks_total",
	Help:      "Total projection ticks processed.",
})

// BonusClaims tracks login bonuses granted.
var BonusClaims = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "bonus",
	Name:      "claims_total",
	Help:      "Total daily login bonuses granted.",
})

// ─── Store Metrics ──────────────────────────────────────────────────────────

// StoreWrites tracks record saves by outcome.
var StoreWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "store",
	Name:      "writes_total",
	Help:      "Total record saves by outcome.",
}, []string{"outcome"})

// StoreReadFallbacks tracks loads that fell back to the default record.
var StoreReadFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "timebank",
	Subsystem: "store",
	Name:      "read_fallbacks_total",
	Help:      "Total loads that recreated the default record, by reason.",
}, []string{"reason"})
