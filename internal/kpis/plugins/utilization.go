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

// Machine time split and reliability figures over a trailing window.
type UtilizationKPI struct {
	BaseKPI[WindowOpts]

	timeSplit       *prometheus.Desc
	utilizationHist *prometheus.Desc
	mtbf            *prometheus.Desc
	mttr            *prometheus.Desc
}

func (UtilizationKPI) GetName() string {
	return "machine_utilization_kpi"
}

func (k *UtilizationKPI) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.BaseKPI.Init(db, opts); err != nil {
		return err
	}
	k.timeSplit = prometheus.NewDesc(
		"millwright_machine_time_minutes",
		"Machine time split in the window (productive, setup, downtime, idle).",
		[]string{"machine_id", "category"},
		nil,
	)
	k.utilizationHist = prometheus.NewDesc(
		"millwright_machine_utilization_pct",
		"Productive share of the window across machines (aggregated as a histogram).",
		nil, nil,
	)
	k.mtbf = prometheus.NewDesc(
		"millwright_machine_mtbf_hours",
		"Mean productive time between unplanned downtimes.",
		[]string{"machine_id"},
		nil,
	)
	k.mttr = prometheus.NewDesc(
		"millwright_machine_mttr_minutes",
		"Mean duration of unplanned downtimes.",
		[]string{"machine_id"},
		nil,
	)
	return nil
}

func (k *UtilizationKPI) Describe(ch chan<- *prometheus.Desc) {
	ch <- k.timeSplit
	ch <- k.utilizationHist
	ch <- k.mtbf
	ch <- k.mttr
}

func (k *UtilizationKPI) Collect(ch chan<- prometheus.Metric) {
	now := time.Now().UTC()
	period := analytics.Period{
		From: now.Add(-time.Duration(k.Options.Hours()) * time.Hour),
		To:   now,
	}
	input, err := store.NewStore(k.DB).LoadAnalyticsInput(period.From, period.To)
	if err != nil {
		slog.Error("utilization kpi: failed to load analytics input", "err", err)
		return
	}
	results := analytics.ComputeUtilization(input, period)
	for _, result := range results {
		ch <- prometheus.MustNewConstMetric(k.timeSplit, prometheus.GaugeValue,
			result.ProductiveMinutes, result.MachineID, "productive")
		ch <- prometheus.MustNewConstMetric(k.timeSplit, prometheus.GaugeValue,
			result.SetupMinutes, result.MachineID, "setup")
		ch <- prometheus.MustNewConstMetric(k.timeSplit, prometheus.GaugeValue,
			result.DowntimeMinutes, result.MachineID, "downtime")
		ch <- prometheus.MustNewConstMetric(k.timeSplit, prometheus.GaugeValue,
			result.IdleMinutes, result.MachineID, "idle")
		ch <- prometheus.MustNewConstMetric(k.mtbf, prometheus.GaugeValue,
			result.MTBFHours, result.MachineID)
		ch <- prometheus.MustNewConstMetric(k.mttr, prometheus.GaugeValue,
			result.MTTRMinutes, result.MachineID)
	}
	buckets := prometheus.LinearBuckets(0, 5, 20)
	hists, counts, sums := Histogram(results, buckets,
		func(analytics.MachineUtilization) []string { return []string{"utilization"} },
		func(result analytics.MachineUtilization) float64 { return result.UtilizationPct },
	)
	for key, hist := range hists {
		ch <- prometheus.MustNewConstHistogram(k.utilizationHist, counts[key], sums[key], hist)
	}
}
