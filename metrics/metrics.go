// Package metrics exposes prometheus collectors for the expansion
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpansionsTotal counts expansion attempts by the matched service
	// domain and the outcome class.
	ExpansionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "urlexpand",
		Name:      "expansions_total",
		Help:      "Expansion attempts by service and outcome.",
	}, []string{"service", "outcome"})

	// ExpansionDuration observes end-to-end expansion latency by
	// service domain.
	ExpansionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "urlexpand",
		Name:      "expansion_duration_seconds",
		Help:      "End-to-end expansion latency by service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service"})
)
