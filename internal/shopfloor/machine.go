// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

// Machine status as reported from the shop floor.
const (
	MachineStatusRunning     = "running"
	MachineStatusIdle        = "idle"
	MachineStatusSetup       = "setup"
	MachineStatusMaintenance = "maintenance"
	MachineStatusError       = "error"
)

// A machine on the shop floor. Efficiency is relative to the nominal
// run time of an operation (1.0 = nominal) and must stay positive in
// all scheduling paths.
type Machine struct {
	ID             string  `json:"id" db:"id,primarykey"`
	Name           string  `json:"name" db:"name"`
	Type           string  `json:"type" db:"type"`
	Status         string  `json:"status" db:"status"`
	Efficiency     float64 `json:"efficiency" db:"efficiency"`
	Location       string  `json:"location" db:"location"`
	OperationLabel string  `json:"operationLabel" db:"operation_label"`
}

// Table under which this model is stored.
func (Machine) TableName() string { return "machines" }

// Binds a machine to the set of machine types it can satisfy, with an
// efficiency factor specific to this (machine, capability) pair. An
// operation is feasible on a machine iff the intersection of the
// operation's machine types and the capability's machine types is
// non-empty.
type MachineCapability struct {
	ID           string     `json:"id" db:"id,primarykey"`
	MachineID    string     `json:"machineId" db:"machine_id"`
	MachineTypes StringList `json:"machineTypes" db:"machine_types"`
	Efficiency   float64    `json:"efficiency" db:"efficiency"`
}

// Table under which this model is stored.
func (MachineCapability) TableName() string { return "machine_capabilities" }
