// Package metrics exposes tree and ingest counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Inserts   prometheus.Counter
	Rejected  prometheus.Counter
	Rotations prometheus.Counter
	Recolors  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbstat_inserts_total",
			Help: "Values inserted into the tree.",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbstat_rejected_inserts_total",
			Help: "Insert requests rejected before reaching the tree.",
		}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbstat_rotations_total",
			Help: "Tree rotations performed while rebalancing.",
		}),
		Recolors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbstat_recolors_total",
			Help: "Node color changes performed while rebalancing.",
		}),
	}
	m.registry.MustRegister(m.Inserts, m.Rejected, m.Rotations, m.Recolors)
	return m
}

// TrackTree registers size and height gauges evaluated at scrape time.
func (m *Metrics) TrackTree(size, height func() float64) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rbstat_tree_size",
			Help: "Values currently stored.",
		}, size),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rbstat_tree_height",
			Help: "Nodes on the longest root-to-leaf path.",
		}, height),
	)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
