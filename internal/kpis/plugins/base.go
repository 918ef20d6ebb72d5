// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"github.com/millwright-dev/millwright/internal/conf"
	"github.com/millwright-dev/millwright/internal/db"
	"github.com/prometheus/client_golang/prometheus"
)

// A KPI reads historical records from the database on each scrape and
// exposes derived metrics. KPIs are registered as Prometheus collectors.
type KPI interface {
	GetName() string
	// Init the KPI with the database and its yaml options.
	Init(db db.DB, opts conf.RawOpts) error
	prometheus.Collector
}

// Common base for all KPIs that provides some functionality
// that would otherwise be duplicated across all KPIs.
type BaseKPI[Opts any] struct {
	// Options to pass via yaml to this KPI.
	conf.YamlOpts[Opts]
	// Database connection.
	DB db.DB
}

// Init the KPI with the database and the options from the config.
func (k *BaseKPI[Opts]) Init(db db.DB, opts conf.RawOpts) error {
	if err := k.Load(opts); err != nil {
		return err
	}
	k.DB = db
	return nil
}

// Options shared by the KPIs that aggregate over a trailing window.
type WindowOpts struct {
	// Length of the trailing reporting window, in hours.
	WindowHours int `yaml:"windowHours"`
}

// Window length with the default of one day applied.
func (o WindowOpts) Hours() int {
	if o.WindowHours <= 0 {
		return 24
	}
	return o.WindowHours
}
