// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/millwright-dev/millwright/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// Collection of Prometheus metrics to monitor the API.
type Monitor struct {
	// A histogram to measure how long the API requests take to run.
	apiRequestsTimer *prometheus.HistogramVec
}

// Create a new API monitor and register the necessary Prometheus metrics.
func NewAPIMonitor(registry *monitoring.Registry) Monitor {
	apiRequestsTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "millwright_api_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status", "error"})
	registry.MustRegister(
		apiRequestsTimer,
	)
	return Monitor{
		apiRequestsTimer: apiRequestsTimer,
	}
}
