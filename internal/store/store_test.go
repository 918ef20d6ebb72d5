// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
	testlibDB "github.com/millwright-dev/millwright/testlib/db"
)

var testStart = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) Store {
	t.Helper()
	env := testlibDB.SetupDBEnv(t)
	t.Cleanup(env.Close)
	s := NewStore(*env.DB)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoadSnapshot(t *testing.T) {
	s := setupStore(t)
	models := []any{
		&shopfloor.WorkOrder{ID: "wo1", Quantity: 10, CreatedAt: testStart},
		&shopfloor.WorkOrder{ID: "wo2", Quantity: 5, CreatedAt: testStart},
		&shopfloor.Operation{ID: "o1", WorkOrderID: "wo1",
			MachineTypes: shopfloor.StringList{"mill"}},
		&shopfloor.Operation{ID: "o2", WorkOrderID: "wo2",
			MachineTypes: shopfloor.StringList{"lathe"}},
		&shopfloor.Machine{ID: "m1", Type: "mill"},
		&shopfloor.MachineCapability{ID: "c1", MachineID: "m1",
			MachineTypes: shopfloor.StringList{"mill"}},
		&shopfloor.ScheduleSlot{ID: "s1", PlanID: "p1", MachineID: "m1",
			Start: testStart, End: testStart.Add(time.Hour),
			Status: shopfloor.SlotStatusScheduled},
		&shopfloor.ScheduleSlot{ID: "s2", PlanID: "p1", MachineID: "m1",
			Start: testStart.Add(time.Hour), End: testStart.Add(2 * time.Hour),
			Status: shopfloor.SlotStatusCancelled},
	}
	for _, model := range models {
		if err := s.DB.Insert(model); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("full snapshot", func(t *testing.T) {
		snapshot, err := s.LoadSnapshot(nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(snapshot.WorkOrders) != 2 || len(snapshot.Operations) != 2 {
			t.Errorf("expected 2 work orders and 2 operations, got %d/%d",
				len(snapshot.WorkOrders), len(snapshot.Operations))
		}
		if len(snapshot.Machines) != 1 || len(snapshot.Capabilities) != 1 {
			t.Errorf("expected 1 machine and 1 capability, got %d/%d",
				len(snapshot.Machines), len(snapshot.Capabilities))
		}
		// Cancelled slots are not existing slots for the scheduler.
		if len(snapshot.ExistingSlots) != 1 || snapshot.ExistingSlots[0].ID != "s1" {
			t.Errorf("expected only s1 as existing slot, got %+v", snapshot.ExistingSlots)
		}
	})

	t.Run("filtered by work order", func(t *testing.T) {
		snapshot, err := s.LoadSnapshot([]string{"wo1"})
		if err != nil {
			t.Fatal(err)
		}
		if len(snapshot.WorkOrders) != 1 || snapshot.WorkOrders[0].ID != "wo1" {
			t.Errorf("expected only wo1, got %+v", snapshot.WorkOrders)
		}
		if len(snapshot.Operations) != 1 || snapshot.Operations[0].ID != "o1" {
			t.Errorf("expected only o1, got %+v", snapshot.Operations)
		}
		// Machines are always loaded in full.
		if len(snapshot.Machines) != 1 {
			t.Errorf("expected 1 machine, got %d", len(snapshot.Machines))
		}
	})
}

func TestInClause(t *testing.T) {
	clause, params := inClause("id", []string{"a", "b"})
	if clause != "id IN (:id0, :id1)" {
		t.Errorf("clause = %q", clause)
	}
	if params["id0"] != "a" || params["id1"] != "b" {
		t.Errorf("params = %v", params)
	}
}
