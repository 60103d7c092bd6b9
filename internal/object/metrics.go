// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import "github.com/prometheus/client_golang/prometheus"

// metricsSet is the engine's Prometheus instrumentation, in the style of
// luxfi-consensus's and AKJUS-bsc-erigon's pervasive CounterVec/GaugeVec
// use.
type metricsSet struct {
	vertexAdmissions *prometheus.CounterVec // labels: kind, origin
	frontierSize     prometheus.Gauge
	mergeOutcomes    *prometheus.CounterVec // labels: outcome (admitted, missing, duplicate)
}

func newMetrics(reg prometheus.Registerer, namespace string) *metricsSet {
	m := &metricsSet{
		vertexAdmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vertex_admissions_total",
			Help:      "Vertices admitted to the hash graph, by track kind and admission origin.",
		}, []string{"kind", "origin"}),
		frontierSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frontier_size",
			Help:      "Current number of hashes in the graph frontier.",
		}),
		mergeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_vertex_outcomes_total",
			Help:      "Per-vertex outcome of processing a merge batch.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.vertexAdmissions, m.frontierSize, m.mergeOutcomes)
	}
	return m
}
