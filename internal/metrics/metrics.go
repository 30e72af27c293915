// Package metrics exposes the Prometheus collectors for report runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts finished report runs by terminal status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cockpit_report_runs_total",
		Help: "Report runs by terminal status (completed, empty, failed).",
	}, []string{"status"})

	// RunDuration observes end-to-end pipeline duration in seconds.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cockpit_report_run_duration_seconds",
		Help:    "End-to-end report pipeline duration.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// RecordsExtracted observes the granular row count per run.
	RecordsExtracted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cockpit_report_records_extracted",
		Help:    "Salesperson rows extracted per report run.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})
)
