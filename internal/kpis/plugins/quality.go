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

// Inspection outcomes and defect ranking over a trailing window.
type QualityKPI struct {
	BaseKPI[WindowOpts]

	rates       *prometheus.Desc
	defectShare *prometheus.Desc
}

func (QualityKPI) GetName() string {
	return "quality_kpi"
}

func (k *QualityKPI) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.BaseKPI.Init(db, opts); err != nil {
		return err
	}
	k.rates = prometheus.NewDesc(
		"millwright_quality_rate_pct",
		"Quality rates in the window (first_pass_yield, scrap, rework).",
		[]string{"rate"},
		nil,
	)
	k.defectShare = prometheus.NewDesc(
		"millwright_quality_defect_share_pct",
		"Share of the top defect types among all defects in the window.",
		[]string{"defect_type"},
		nil,
	)
	return nil
}

func (k *QualityKPI) Describe(ch chan<- *prometheus.Desc) {
	ch <- k.rates
	ch <- k.defectShare
}

func (k *QualityKPI) Collect(ch chan<- prometheus.Metric) {
	now := time.Now().UTC()
	period := analytics.Period{
		From: now.Add(-time.Duration(k.Options.Hours()) * time.Hour),
		To:   now,
	}
	input, err := store.NewStore(k.DB).LoadAnalyticsInput(period.From, period.To)
	if err != nil {
		slog.Error("quality kpi: failed to load analytics input", "err", err)
		return
	}
	summary := analytics.ComputeQuality(input, period)
	ch <- prometheus.MustNewConstMetric(k.rates, prometheus.GaugeValue,
		summary.FirstPassYieldPct, "first_pass_yield")
	ch <- prometheus.MustNewConstMetric(k.rates, prometheus.GaugeValue,
		summary.ScrapRatePct, "scrap")
	ch <- prometheus.MustNewConstMetric(k.rates, prometheus.GaugeValue,
		summary.ReworkRatePct, "rework")
	for _, entry := range summary.DefectPareto {
		ch <- prometheus.MustNewConstMetric(k.defectShare, prometheus.GaugeValue,
			entry.Percentage, entry.Name)
	}
}
