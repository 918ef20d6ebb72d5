// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

import "time"

// Work order priorities, ordered from most to least urgent.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// Work order lifecycle states.
const (
	WorkOrderStatusPending    = "pending"
	WorkOrderStatusSetup      = "setup"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusOnHold     = "on_hold"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCancelled  = "cancelled"
)

// A customer/production request for a quantity of a part, decomposed
// into precedence-linked operations.
type WorkOrder struct {
	ID                string     `json:"id" db:"id,primarykey"`
	OrderNumber       string     `json:"orderNumber" db:"order_number"`
	PartNumber        string     `json:"partNumber" db:"part_number"`
	PartName          string     `json:"partName" db:"part_name"`
	Quantity          int        `json:"quantity" db:"quantity"`
	CompletedQuantity int        `json:"completedQuantity" db:"completed_quantity"`
	Priority          string     `json:"priority" db:"priority"`
	Status            string     `json:"status" db:"status"`
	PlannedStart      *time.Time `json:"plannedStart,omitempty" db:"planned_start"`
	PlannedEnd        *time.Time `json:"plannedEnd,omitempty" db:"planned_end"`
	ActualStart       *time.Time `json:"actualStart,omitempty" db:"actual_start"`
	ActualEnd         *time.Time `json:"actualEnd,omitempty" db:"actual_end"`
	AssignedMachineID *string    `json:"assignedMachineId,omitempty" db:"assigned_machine_id"`
	EstimatedHours    float64    `json:"estimatedHours" db:"estimated_hours"`
	ActualHours       float64    `json:"actualHours" db:"actual_hours"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// Table under which this model is stored.
func (WorkOrder) TableName() string { return "work_orders" }

// An atomic processing step with setup and run times, bound to one
// work order. Predecessor/successor relations must be mutually
// consistent and acyclic; the scheduler reports violations as conflicts.
type Operation struct {
	ID                string     `json:"id" db:"id,primarykey"`
	WorkOrderID       string     `json:"workOrderId" db:"work_order_id"`
	Number            int        `json:"number" db:"number"`
	Family            string     `json:"family" db:"family"`
	MachineTypes      StringList `json:"machineTypes" db:"machine_types"`
	RequiredSkills    StringList `json:"requiredSkills" db:"required_skills"`
	SetupMinutes      int        `json:"setupMinutes" db:"setup_minutes"`
	RunMinutesPerUnit float64    `json:"runMinutesPerUnit" db:"run_minutes_per_unit"`
	BatchSize         int        `json:"batchSize" db:"batch_size"`
	Predecessors      StringList `json:"predecessors" db:"predecessors"`
	Successors        StringList `json:"successors" db:"successors"`
	AssignedMachineID *string    `json:"assignedMachineId,omitempty" db:"assigned_machine_id"`
	DueDate           *time.Time `json:"dueDate,omitempty" db:"due_date"`
}

// Table under which this model is stored.
func (Operation) TableName() string { return "operations" }
