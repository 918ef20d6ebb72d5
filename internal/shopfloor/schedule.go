// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

import "time"

// Schedule slot lifecycle states.
const (
	SlotStatusScheduled  = "scheduled"
	SlotStatusInProgress = "in_progress"
	SlotStatusCompleted  = "completed"
	SlotStatusCancelled  = "cancelled"
)

// One scheduled execution window of an operation on a machine.
// Invariants: End - Start equals SetupMinutes + RunMinutes; no two
// non-cancelled slots on the same machine overlap; a locked slot never
// changes its start, end, or machine.
type ScheduleSlot struct {
	ID            string     `json:"id" db:"id,primarykey"`
	PlanID        string     `json:"planId" db:"plan_id"`
	WorkOrderID   string     `json:"workOrderId" db:"work_order_id"`
	OperationID   string     `json:"operationId" db:"operation_id"`
	MachineID     string     `json:"machineId" db:"machine_id"`
	Start         time.Time  `json:"start" db:"start_time"`
	End           time.Time  `json:"end" db:"end_time"`
	SetupMinutes  int        `json:"setupMinutes" db:"setup_minutes"`
	RunMinutes    int        `json:"runMinutes" db:"run_minutes"`
	Quantity      int        `json:"quantity" db:"quantity"`
	PriorityScore float64    `json:"priorityScore" db:"priority_score"`
	Rule          string     `json:"rule" db:"rule"`
	Status        string     `json:"status" db:"status"`
	ConflictFlags StringList `json:"conflictFlags" db:"conflict_flags"`
	Locked        bool       `json:"locked" db:"locked"`
}

// Table under which this model is stored.
func (ScheduleSlot) TableName() string { return "schedule_slots" }

// Overlaps reports whether the half-open windows [s.Start, s.End) and
// [other.Start, other.End) intersect.
func (s ScheduleSlot) Overlaps(other ScheduleSlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Per-machine, per-day aggregate of planned versus available minutes.
// Utilization and the overload fields are derived from the minute
// counters, never set independently.
type CapacityBucket struct {
	PlanID           string  `json:"planId" db:"plan_id,primarykey"`
	MachineID        string  `json:"machineId" db:"machine_id,primarykey"`
	Date             string  `json:"date" db:"date,primarykey"`
	AvailableMinutes int     `json:"availableMinutes" db:"available_minutes"`
	PlannedMinutes   int     `json:"plannedMinutes" db:"planned_minutes"`
	ActualMinutes    int     `json:"actualMinutes" db:"actual_minutes"`
	Utilization      float64 `json:"utilization" db:"utilization"`
	IsOverloaded     bool    `json:"isOverloaded" db:"is_overloaded"`
	OverloadPct      float64 `json:"overloadPercentage" db:"overload_pct"`
}

// Table under which this model is stored.
func (CapacityBucket) TableName() string { return "capacity_buckets" }

// Scheduling policy for one scheduler invocation.
type SchedulingPolicy struct {
	// Dispatch rule, one of "edd", "spt", "cr", "fifo", "priority".
	Rule string `json:"rule" yaml:"rule"`
	// Scheduling horizon in hours from the plan start.
	HorizonHours int `json:"horizonHours" yaml:"horizonHours"`
	// Whether daily machine overload beyond the tolerance is reported.
	AllowOverload bool `json:"allowOverload" yaml:"allowOverload"`
	// Tolerated overload in percent above full utilization.
	MaxOverloadPct float64 `json:"maxOverloadPercentage" yaml:"maxOverloadPercentage"`
	// Handoff buffer between an operation and its predecessors.
	TransferMinutes int `json:"transferMinutes" yaml:"transferMinutes"`
	// Run time multiplier applied when a machine serves an operation
	// through a capability record rather than its native type.
	NonOptimalRunFactor float64 `json:"nonOptimalRunFactor" yaml:"nonOptimalRunFactor"`
}

// Policy defaults applied by Normalize.
const (
	DefaultHorizonHours        = 168
	DefaultMaxOverloadPct      = 20
	DefaultTransferMinutes     = 10
	DefaultNonOptimalRunFactor = 1.2
)

// Normalize fills unset policy fields with their defaults.
func (p SchedulingPolicy) Normalize() SchedulingPolicy {
	if p.Rule == "" {
		p.Rule = "fifo"
	}
	if p.HorizonHours == 0 {
		p.HorizonHours = DefaultHorizonHours
	}
	if p.MaxOverloadPct == 0 {
		p.MaxOverloadPct = DefaultMaxOverloadPct
	}
	if p.TransferMinutes == 0 {
		p.TransferMinutes = DefaultTransferMinutes
	}
	if p.NonOptimalRunFactor == 0 {
		p.NonOptimalRunFactor = DefaultNonOptimalRunFactor
	}
	return p
}
