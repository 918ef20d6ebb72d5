// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"log/slog"
	"time"

	"github.com/millwright-dev/millwright/internal/conf"
	"github.com/millwright-dev/millwright/internal/db"
	"github.com/millwright-dev/millwright/internal/shopfloor"
	"github.com/prometheus/client_golang/prometheus"
)

// Planned capacity utilization from the stored buckets of the current
// day, as produced by the last scheduler runs.
type CapacityKPI struct {
	BaseKPI[struct{}] // No options passed through yaml config

	utilization *prometheus.Desc
	overloaded  *prometheus.Desc
}

func (CapacityKPI) GetName() string {
	return "capacity_kpi"
}

func (k *CapacityKPI) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.BaseKPI.Init(db, opts); err != nil {
		return err
	}
	k.utilization = prometheus.NewDesc(
		"millwright_capacity_utilization",
		"Planned over available minutes per machine for today.",
		[]string{"machine_id", "plan_id"},
		nil,
	)
	k.overloaded = prometheus.NewDesc(
		"millwright_capacity_overloaded",
		"1 when a machine is planned beyond its available minutes today.",
		[]string{"machine_id", "plan_id"},
		nil,
	)
	return nil
}

func (k *CapacityKPI) Describe(ch chan<- *prometheus.Desc) {
	ch <- k.utilization
	ch <- k.overloaded
}

func (k *CapacityKPI) Collect(ch chan<- prometheus.Metric) {
	var buckets []shopfloor.CapacityBucket
	today := time.Now().UTC().Format(time.DateOnly)
	_, err := k.DB.Select(&buckets,
		"SELECT * FROM capacity_buckets WHERE date = :date",
		map[string]any{"date": today})
	if err != nil {
		slog.Error("capacity kpi: failed to select capacity buckets", "err", err)
		return
	}
	for _, bucket := range buckets {
		ch <- prometheus.MustNewConstMetric(k.utilization, prometheus.GaugeValue,
			bucket.Utilization, bucket.MachineID, bucket.PlanID)
		overloaded := 0.0
		if bucket.IsOverloaded {
			overloaded = 1.0
		}
		ch <- prometheus.MustNewConstMetric(k.overloaded, prometheus.GaugeValue,
			overloaded, bucket.MachineID, bucket.PlanID)
	}
}
