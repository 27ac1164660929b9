// Package metrics exposes the economy as Prometheus collectors on a private registry.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const DefaultNamespace = "idle"

// EconomyMetrics groups every collector the engine updates.
type EconomyMetrics struct {
	registry *prometheus.Registry

	Commands *prometheus.CounterVec // by command and result (ok or error code)
	Summons  *prometheus.CounterVec // by tier and outcome (new, banked, converted)

	Ticks       prometheus.Counter
	GoldAccrued prometheus.Counter
	LevelUps    prometheus.Counter

	Level prometheus.Gauge
	Gold  prometheus.Gauge
	Gems  prometheus.Gauge
	Rate  prometheus.Gauge // gold per second
}

// New registers the economy collectors and the Go runtime collectors on a fresh registry.
func New(namespace string) *EconomyMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &EconomyMetrics{
		registry: prometheus.NewRegistry(),

		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Commands applied to the game state.",
			},
			[]string{"command", "result"},
		),
		Summons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summons_total",
				Help:      "Successful summons by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		),

		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Accrual ticks applied.",
		}),
		GoldAccrued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gold_accrued_total",
			Help:      "Whole gold added by accrual.",
		}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Levels gained.",
		}),

		Level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Current player level.",
		}),
		Gold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gold",
			Help:      "Current gold balance.",
		}),
		Gems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gems",
			Help:      "Current premium balance.",
		}),
		Rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gold_rate",
			Help:      "Gold generated per second by the current deployment.",
		}),
	}
	m.registry.MustRegister(
		m.Commands, m.Summons,
		m.Ticks, m.GoldAccrued, m.LevelUps,
		m.Level, m.Gold, m.Gems, m.Rate,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is what the /metrics handler serves.
func (m *EconomyMetrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCommand counts one command; result is "ok" or an error code.
func (m *EconomyMetrics) ObserveCommand(command, result string) {
	m.Commands.WithLabelValues(command, result).Inc()
}

// ObserveSummon counts one successful summon.
func (m *EconomyMetrics) ObserveSummon(tier int, outcome string) {
	m.Summons.WithLabelValues(strconv.Itoa(tier), outcome).Inc()
}

// ObserveTick records one accrual tick.
func (m *EconomyMetrics) ObserveTick(gold int64, levels int) {
	m.Ticks.Inc()
	m.GoldAccrued.Add(float64(gold))
	m.LevelUps.Add(float64(levels))
}

// SetBalances mirrors the aggregate into the gauges.
func (m *EconomyMetrics) SetBalances(level int, gold, gems int64, rate float64) {
	m.Level.Set(float64(level))
	m.Gold.Set(float64(gold))
	m.Gems.Set(float64(gems))
	m.Rate.Set(rate)
}
