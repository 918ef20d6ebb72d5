// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"log/slog"
	"time"

	"github.com/millwright-dev/millwright/internal/analytics"
	"github.com/millwright-dev/millwright/internal/conf"
	"github.com/millwright-dev/millwright/internal/db"
	"github.com/millwright-dev/millwright/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Overall equipment effectiveness per machine, over a trailing window.
type OEEKPI struct {
	BaseKPI[WindowOpts]

	oeeFactors *prometheus.Desc
	oeeHist    *prometheus.Desc
}

func (OEEKPI) GetName() string {
	return "oee_kpi"
}

func (k *OEEKPI) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.BaseKPI.Init(db, opts); err != nil {
		return err
	}
	k.oeeFactors = prometheus.NewDesc(
		"millwright_oee_factor",
		"OEE factors per machine (availability, performance, quality, oee).",
		[]string{"machine_id", "factor"},
		nil,
	)
	k.oeeHist = prometheus.NewDesc(
		"millwright_oee",
		"OEE across all machines (aggregated as a histogram).",
		nil,
		nil,
	)
	return nil
}

func (k *OEEKPI) Describe(ch chan<- *prometheus.Desc) {
	ch <- k.oeeFactors
	ch <- k.oeeHist
}

func (k *OEEKPI) Collect(ch chan<- prometheus.Metric) {
	now := time.Now().UTC()
	period := analytics.Period{
		From: now.Add(-time.Duration(k.Options.Hours()) * time.Hour),
		To:   now,
	}
	input, err := store.NewStore(k.DB).LoadAnalyticsInput(period.From, period.To)
	if err != nil {
		slog.Error("oee kpi: failed to load analytics input", "err", err)
		return
	}
	results := analytics.ComputeOEE(input, period)
	for _, result := range results {
		ch <- prometheus.MustNewConstMetric(k.oeeFactors, prometheus.GaugeValue,
			result.Availability, result.MachineID, "availability")
		ch <- prometheus.MustNewConstMetric(k.oeeFactors, prometheus.GaugeValue,
			result.Performance, result.MachineID, "performance")
		ch <- prometheus.MustNewConstMetric(k.oeeFactors, prometheus.GaugeValue,
			result.Quality, result.MachineID, "quality")
		ch <- prometheus.MustNewConstMetric(k.oeeFactors, prometheus.GaugeValue,
			result.OEE, result.MachineID, "oee")
	}
	buckets := prometheus.LinearBuckets(0, 0.05, 20)
	hists, counts, sums := Histogram(results, buckets,
		func(analytics.MachineOEE) []string { return []string{"oee"} },
		func(result analytics.MachineOEE) float64 { return result.OEE },
	)
	for key, hist := range hists {
		ch <- prometheus.MustNewConstHistogram(k.oeeHist, counts[key], sums[key], hist)
	}
}
