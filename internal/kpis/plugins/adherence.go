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

// Schedule adherence of the work orders started in a trailing window.
type AdherenceKPI struct {
	BaseKPI[WindowOpts]

	onTimePct *prometheus.Desc
	avgDelay  *prometheus.Desc
	avgScore  *prometheus.Desc
}

func (AdherenceKPI) GetName() string {
	return "schedule_adherence_kpi"
}

func (k *AdherenceKPI) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.BaseKPI.Init(db, opts); err != nil {
		return err
	}
	k.onTimePct = prometheus.NewDesc(
		"millwright_schedule_adherence_on_time_pct",
		"Share of work orders that started within the on-time tolerance.",
		nil, nil,
	)
	k.avgDelay = prometheus.NewDesc(
		"millwright_schedule_adherence_avg_delay_minutes",
		"Average start delay of the work orders in the window.",
		nil, nil,
	)
	k.avgScore = prometheus.NewDesc(
		"millwright_schedule_adherence_avg_score",
		"Average adherence score (100 minus 10 points per hour of delay).",
		nil, nil,
	)
	return nil
}

func (k *AdherenceKPI) Describe(ch chan<- *prometheus.Desc) {
	ch <- k.onTimePct
	ch <- k.avgDelay
	ch <- k.avgScore
}

func (k *AdherenceKPI) Collect(ch chan<- prometheus.Metric) {
	now := time.Now().UTC()
	period := analytics.Period{
		From: now.Add(-time.Duration(k.Options.Hours()) * time.Hour),
		To:   now,
	}
	input, err := store.NewStore(k.DB).LoadAnalyticsInput(period.From, period.To)
	if err != nil {
		slog.Error("adherence kpi: failed to load analytics input", "err", err)
		return
	}
	summary := analytics.ComputeAdherence(input, period)
	ch <- prometheus.MustNewConstMetric(k.onTimePct, prometheus.GaugeValue, summary.OnTimePct)
	ch <- prometheus.MustNewConstMetric(k.avgDelay, prometheus.GaugeValue, summary.AvgDelayMinutes)
	ch <- prometheus.MustNewConstMetric(k.avgScore, prometheus.GaugeValue, summary.AvgScore)
}
