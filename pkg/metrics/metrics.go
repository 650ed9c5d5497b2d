// Package metrics holds the prometheus collectors of the operation layer.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opdb"

type Metrics struct {
	TxTotal            *prometheus.CounterVec
	TxDuration         *prometheus.HistogramVec
	TxRetries          *prometheus.CounterVec
	RejectedReferences *prometheus.CounterVec
	JoinStrategy       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		TxTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "total",
				Help:      "Units of work by outcome (ok or error kind)",
			},
			[]string{"unit", "outcome"},
		),
		TxDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "duration_seconds",
				Help:      "Time spent running a unit of work, retries included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"unit"},
		),
		TxRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "retries_total",
				Help:      "Units of work replayed after a transient storage failure",
			},
			[]string{"unit"},
		),
		RejectedReferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "integrity",
				Name:      "rejected_references_total",
				Help:      "References that did not resolve, by target collection",
			},
			[]string{"collection"},
		),
		JoinStrategy: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "reads_total",
				Help:      "Composed reads by view and strategy (native or fallback)",
			},
			[]string{"view", "strategy"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.TxTotal, m.TxDuration, m.TxRetries, m.RejectedReferences, m.JoinStrategy}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

var (
	registry *prometheus.Registry
	defaults *Metrics
	once     sync.Once
)

func setup() {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		defaults = NewMetrics()
		registry.MustRegister(defaults.collectors()...)
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// Default returns the process-wide metrics, registered on Registry().
func Default() *Metrics {
	setup()
	return defaults
}

func Registry() *prometheus.Registry {
	setup()
	return registry
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
