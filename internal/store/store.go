// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

// Package store persists the shop floor model and the produced
// schedules. It is the only package that talks to the database; the
// scheduler and analytics engines stay pure and get their inputs from
// snapshots loaded here.
package store

import (
	"fmt"
	"log/slog"

	"github.com/millwright-dev/millwright/internal/db"
	"github.com/millwright-dev/millwright/internal/shopfloor"
)

type Store struct {
	DB db.DB
}

func NewStore(database db.DB) Store {
	return Store{DB: database}
}

// Register all model tables and create them if they don't exist yet.
func (s Store) Init() error {
	tables := []db.Table{
		shopfloor.WorkOrder{},
		shopfloor.Operation{},
		shopfloor.Machine{},
		shopfloor.MachineCapability{},
		shopfloor.ScheduleSlot{},
		shopfloor.CapacityBucket{},
		shopfloor.ProductionLog{},
		shopfloor.DowntimeEvent{},
		shopfloor.QualityRecord{},
		shopfloor.OperatorSession{},
	}
	for _, table := range tables {
		if err := s.DB.CreateTable(s.DB.AddTable(table)); err != nil {
			return err
		}
	}
	return nil
}

// Everything a scheduler run needs, loaded in one go. The snapshot is
// taken before the pipeline is invoked so the run never sees torn reads.
type Snapshot struct {
	WorkOrders    []shopfloor.WorkOrder
	Operations    []shopfloor.Operation
	Machines      []shopfloor.Machine
	Capabilities  []shopfloor.MachineCapability
	ExistingSlots []shopfloor.ScheduleSlot
}

// Load a snapshot of the scheduling inputs. With workOrderIDs given,
// only those work orders and their operations are loaded; machines and
// capabilities are always loaded in full.
func (s Store) LoadSnapshot(workOrderIDs []string) (Snapshot, error) {
	var snapshot Snapshot
	var err error
	if len(workOrderIDs) == 0 {
		_, err = s.DB.Select(&snapshot.WorkOrders, "SELECT * FROM work_orders")
		if err == nil {
			_, err = s.DB.Select(&snapshot.Operations, "SELECT * FROM operations")
		}
	} else {
		clause, params := inClause("id", workOrderIDs)
		_, err = s.DB.Select(&snapshot.WorkOrders,
			"SELECT * FROM work_orders WHERE "+clause, params)
		if err == nil {
			clause, params = inClause("work_order_id", workOrderIDs)
			_, err = s.DB.Select(&snapshot.Operations,
				"SELECT * FROM operations WHERE "+clause, params)
		}
	}
	if err != nil {
		return snapshot, err
	}
	if _, err = s.DB.Select(&snapshot.Machines, "SELECT * FROM machines"); err != nil {
		return snapshot, err
	}
	if _, err = s.DB.Select(&snapshot.Capabilities, "SELECT * FROM machine_capabilities"); err != nil {
		return snapshot, err
	}
	_, err = s.DB.Select(&snapshot.ExistingSlots,
		"SELECT * FROM schedule_slots WHERE status != :status",
		map[string]any{"status": shopfloor.SlotStatusCancelled})
	if err != nil {
		return snapshot, err
	}
	slog.Info("store: snapshot loaded",
		"workOrders", len(snapshot.WorkOrders), "operations", len(snapshot.Operations),
		"machines", len(snapshot.Machines), "slots", len(snapshot.ExistingSlots))
	return snapshot, nil
}

// Build a named-parameter IN clause for gorp, e.g. "id IN (:id0, :id1)".
func inClause(column string, values []string) (string, map[string]any) {
	params := make(map[string]any, len(values))
	clause := column + " IN ("
	for i, value := range values {
		name := fmt.Sprintf("%s%d", column, i)
		if i > 0 {
			clause += ", "
		}
		clause += ":" + name
		params[name] = value
	}
	return clause + ")", params
}
