// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

// Package analytics computes shop floor KPIs from historical records.
// All entry points are pure functions: no I/O, no hidden state, safe
// to call concurrently. Derived metrics are rounded to two decimal
// places and divisions by zero yield 0, never NaN.
package analytics

import (
	"math"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Reporting period, inclusive of From and exclusive of To.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Minutes covered by the period, clamped to 0.
func (p Period) Minutes() float64 {
	return math.Max(0, p.To.Sub(p.From).Minutes())
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Snapshot of all records the KPI computations run over. The caller
// assembles it (usually from the database) before invoking Compute.
type Input struct {
	Machines         []shopfloor.Machine
	WorkOrders       []shopfloor.WorkOrder
	ProductionLogs   []shopfloor.ProductionLog
	DowntimeEvents   []shopfloor.DowntimeEvent
	QualityRecords   []shopfloor.QualityRecord
	ScheduleSlots    []shopfloor.ScheduleSlot
	OperatorSessions []shopfloor.OperatorSession
}

// The full KPI report over one period.
type Report struct {
	Period      Period               `json:"period"`
	OEE         []MachineOEE         `json:"oee"`
	Adherence   AdherenceSummary     `json:"adherence"`
	Utilization []MachineUtilization `json:"utilization"`
	Quality     QualitySummary       `json:"quality"`
}

// Compute the full KPI report over the given period.
func Compute(input Input, period Period) Report {
	return Report{
		Period:      period,
		OEE:         ComputeOEE(input, period),
		Adherence:   ComputeAdherence(input, period),
		Utilization: ComputeUtilization(input, period),
		Quality:     ComputeQuality(input, period),
	}
}

// Round to two decimal places, for display precision.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Division guarded against zero, NaN and infinite denominators.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	return numerator / denominator
}
