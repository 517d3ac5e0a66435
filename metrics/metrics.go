// Package metrics exposes engine counters and gauges in Prometheus format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Set struct {
	TradesOpened    *prometheus.CounterVec
	TradesClosed    *prometheus.CounterVec
	EntriesRejected *prometheus.CounterVec

	OpenPositions     prometheus.Gauge
	AvailableCapital  prometheus.Gauge
	AggregateExposure prometheus.Gauge
	AggregateLeverage prometheus.Gauge
	CrashGuardActive  prometheus.Gauge
}

// New builds the metric set and registers it. Pass nil to use the default
// registerer.
func New(reg prometheus.Registerer) *Set {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &Set{
		TradesOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_trades_opened_total",
				Help: "Positions opened, split by direction",
			},
			[]string{"direction"},
		),
		TradesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_trades_closed_total",
				Help: "Positions closed, split by exit reason and direction",
			},
			[]string{"reason", "direction"},
		),
		EntriesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intraday_entries_rejected_total",
				Help: "Entry signals rejected before opening, split by cause",
			},
			[]string{"cause"},
		),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intraday_open_positions",
			Help: "Currently open positions",
		}),
		AvailableCapital: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intraday_available_capital",
			Help: "Capital not committed to open positions",
		}),
		AggregateExposure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intraday_aggregate_exposure",
			Help: "Total notional committed across open positions",
		}),
		AggregateLeverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intraday_aggregate_leverage",
			Help: "Sum of leverage across open positions",
		}),
		CrashGuardActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intraday_crash_guard_active",
			Help: "1 while the market-crash guard is dampening entries",
		}),
	}

	reg.MustRegister(
		s.TradesOpened,
		s.TradesClosed,
		s.EntriesRejected,
		s.OpenPositions,
		s.AvailableCapital,
		s.AggregateExposure,
		s.AggregateLeverage,
		s.CrashGuardActive,
	)
	return s
}
