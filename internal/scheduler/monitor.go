// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/millwright-dev/millwright/internal/monitoring"
	"github.com/millwright-dev/millwright/internal/shopfloor"
	"github.com/prometheus/client_golang/prometheus"
)

// Collection of Prometheus metrics for the scheduling pipeline. The
// zero value is a no-op monitor, which the tests use.
type Monitor struct {
	// Time spent in a full pipeline run.
	pipelineRunTimer prometheus.Histogram
	// Scheduler runs by dispatch rule.
	runCounter *prometheus.CounterVec
	// Conflicts raised, by type and severity.
	conflictCounter *prometheus.CounterVec
	// Operations per request and slots per produced plan.
	operationsHist prometheus.Histogram
	slotsHist      prometheus.Histogram
}

// Create a new scheduler monitor and register its metrics.
func NewSchedulerMonitor(registry *monitoring.Registry) Monitor {
	monitor := Monitor{
		pipelineRunTimer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "millwright_scheduler_pipeline_run_duration_seconds",
			Help:    "Duration of one scheduling pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		runCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "millwright_scheduler_runs_total",
			Help: "Number of scheduler runs, by dispatch rule.",
		}, []string{"rule"}),
		conflictCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "millwright_scheduler_conflicts_total",
			Help: "Number of conflicts raised by the scheduler, by type and severity.",
		}, []string{"type", "severity"}),
		operationsHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "millwright_scheduler_request_operations",
			Help:    "Number of operations per scheduling request.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		slotsHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "millwright_scheduler_plan_slots",
			Help:    "Number of slots per produced plan.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	registry.MustRegister(
		monitor.pipelineRunTimer,
		monitor.runCounter,
		monitor.conflictCounter,
		monitor.operationsHist,
		monitor.slotsHist,
	)
	return monitor
}

func (m Monitor) observeRun(rule Rule, operations, slots int, conflicts []shopfloor.SchedulingConflict) {
	if m.runCounter != nil {
		m.runCounter.WithLabelValues(string(rule)).Inc()
	}
	if m.conflictCounter != nil {
		for _, conflict := range conflicts {
			m.conflictCounter.WithLabelValues(conflict.Type, conflict.Severity).Inc()
		}
	}
	if m.operationsHist != nil {
		m.operationsHist.Observe(float64(operations))
	}
	if m.slotsHist != nil {
		m.slotsHist.Observe(float64(slots))
	}
}
