// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

import "time"

// Quality inspection results.
const (
	QualityResultPass   = "pass"
	QualityResultFail   = "fail"
	QualityResultRework = "rework"
)

// Downtime reasons that count as planned and are excluded from the
// availability loss in OEE calculations.
const (
	DowntimeReasonSetup       = "setup"
	DowntimeReasonMaintenance = "maintenance"
)

// One reported production quantity. Append-only.
type ProductionLog struct {
	ID               string    `json:"id" db:"id,primarykey"`
	MachineID        string    `json:"machineId" db:"machine_id"`
	WorkOrderID      string    `json:"workOrderId" db:"work_order_id"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
	Quantity         int       `json:"quantity" db:"quantity"`
	CycleTimeMinutes float64   `json:"cycleTimeMinutes" db:"cycle_time_minutes"`
}

// Table under which this model is stored.
func (ProductionLog) TableName() string { return "production_logs" }

// One machine downtime window. Append-only.
type DowntimeEvent struct {
	ID              string    `json:"id" db:"id,primarykey"`
	MachineID       string    `json:"machineId" db:"machine_id"`
	Start           time.Time `json:"start" db:"start_time"`
	End             time.Time `json:"end" db:"end_time"`
	DurationMinutes float64   `json:"durationMinutes" db:"duration_minutes"`
	Reason          string    `json:"reason" db:"reason"`
}

// Table under which this model is stored.
func (DowntimeEvent) TableName() string { return "downtime_events" }

// One quality inspection record. Append-only.
type QualityRecord struct {
	ID          string    `json:"id" db:"id,primarykey"`
	WorkOrderID string    `json:"workOrderId" db:"work_order_id"`
	MachineID   string    `json:"machineId" db:"machine_id"`
	PartNumber  string    `json:"partNumber" db:"part_number"`
	InspectedAt time.Time `json:"inspectedAt" db:"inspected_at"`
	Result      string    `json:"result" db:"result"`
	DefectType  string    `json:"defectType" db:"defect_type"`
}

// Table under which this model is stored.
func (QualityRecord) TableName() string { return "quality_records" }

// One operator session on a machine. Append-only.
type OperatorSession struct {
	ID           string    `json:"id" db:"id,primarykey"`
	Operator     string    `json:"operator" db:"operator"`
	MachineID    string    `json:"machineId" db:"machine_id"`
	Start        time.Time `json:"start" db:"start_time"`
	End          time.Time `json:"end" db:"end_time"`
	SetupMinutes float64   `json:"setupMinutes" db:"setup_minutes"`
	RunMinutes   float64   `json:"runMinutes" db:"run_minutes"`
}

// Table under which this model is stored.
func (OperatorSession) TableName() string { return "operator_sessions" }
