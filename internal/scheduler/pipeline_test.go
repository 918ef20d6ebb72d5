// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// A two-machine shop with one work order whose two operations form a
// chain across machine types.
func chainRequest() Request {
	start := at(monday, 8, 0)
	return Request{
		PlanID:    "plan-1",
		StartTime: &start,
		Policy:    shopfloor.SchedulingPolicy{Rule: "fifo"},
		Machines: []shopfloor.Machine{
			{ID: "m1", Type: "mill", Efficiency: 1.0},
			{ID: "m2", Type: "lathe", Efficiency: 1.0},
		},
		Capabilities: []shopfloor.MachineCapability{
			{ID: "c1", MachineID: "m1", MachineTypes: shopfloor.StringList{"mill"}, Efficiency: 1.0},
			{ID: "c2", MachineID: "m2", MachineTypes: shopfloor.StringList{"lathe"}, Efficiency: 1.0},
		},
		WorkOrders: []shopfloor.WorkOrder{
			{ID: "wo1", Quantity: 10, Priority: shopfloor.PriorityNormal, CreatedAt: monday.AddDate(0, 0, -1)},
		},
		Operations: []shopfloor.Operation{
			{ID: "o1", WorkOrderID: "wo1", Family: "gears",
				MachineTypes: shopfloor.StringList{"mill"}, SetupMinutes: 15, RunMinutesPerUnit: 6},
			{ID: "o2", WorkOrderID: "wo1", Family: "gears",
				MachineTypes: shopfloor.StringList{"lathe"}, SetupMinutes: 10, RunMinutesPerUnit: 3,
				Predecessors: shopfloor.StringList{"o1"}},
		},
		Calendar: weekdayCalendar(),
	}
}

func runPipeline(t *testing.T, request Request) *Result {
	t.Helper()
	result, err := NewPipeline(Monitor{}).Run(slog.Default(), request)
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	return result
}

func slotByOperation(result *Result, opID string) (shopfloor.ScheduleSlot, bool) {
	for _, slot := range result.Slots {
		if slot.OperationID == opID {
			return slot, true
		}
	}
	return shopfloor.ScheduleSlot{}, false
}

func TestPipeline_ChainPlacement(t *testing.T) {
	result := runPipeline(t, chainRequest())
	if len(result.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", result.Conflicts)
	}
	if len(result.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(result.Slots))
	}

	// o1: 15 setup + 10*6 run = 75 minutes from the plan start.
	o1, _ := slotByOperation(result, "o1")
	if o1.MachineID != "m1" {
		t.Errorf("o1 machine = %s, expected m1", o1.MachineID)
	}
	if !o1.Start.Equal(at(monday, 8, 0)) || !o1.End.Equal(at(monday, 9, 15)) {
		t.Errorf("o1 window = [%s, %s), expected [08:00, 09:15)", o1.Start, o1.End)
	}

	// o2 starts after o1 plus the 10-minute transfer buffer, off-grid.
	o2, _ := slotByOperation(result, "o2")
	if o2.MachineID != "m2" {
		t.Errorf("o2 machine = %s, expected m2", o2.MachineID)
	}
	if !o2.Start.Equal(at(monday, 9, 25)) || !o2.End.Equal(at(monday, 10, 5)) {
		t.Errorf("o2 window = [%s, %s), expected [09:25, 10:05)", o2.Start, o2.End)
	}

	for _, slot := range result.Slots {
		if slot.Status != shopfloor.SlotStatusScheduled {
			t.Errorf("slot %s status = %s", slot.ID, slot.Status)
		}
		if slot.Quantity != 10 {
			t.Errorf("slot %s quantity = %d, expected 10", slot.ID, slot.Quantity)
		}
	}
	// Both machines ran on the same day, one bucket each.
	if len(result.Buckets) != 2 {
		t.Errorf("expected 2 buckets, got %d", len(result.Buckets))
	}
}

func TestPipeline_Invariants(t *testing.T) {
	request := chainRequest()
	// Add a second work order competing for the mill.
	request.WorkOrders = append(request.WorkOrders, shopfloor.WorkOrder{
		ID: "wo2", Quantity: 20, Priority: shopfloor.PriorityHigh, CreatedAt: monday,
	})
	request.Operations = append(request.Operations,
		shopfloor.Operation{ID: "o3", WorkOrderID: "wo2", Family: "shafts",
			MachineTypes: shopfloor.StringList{"mill"}, SetupMinutes: 20, RunMinutesPerUnit: 4},
		shopfloor.Operation{ID: "o4", WorkOrderID: "wo2", Family: "shafts",
			MachineTypes: shopfloor.StringList{"lathe"}, SetupMinutes: 5, RunMinutesPerUnit: 2,
			Predecessors: shopfloor.StringList{"o3"}},
	)
	result := runPipeline(t, request)
	engine, _ := newCalendarEngine(request.Calendar)
	transfer := 10 * time.Minute

	byOp := make(map[string]shopfloor.ScheduleSlot)
	for _, slot := range result.Slots {
		byOp[slot.OperationID] = slot

		// Slot duration always equals setup plus run minutes.
		expected := time.Duration(slot.SetupMinutes+slot.RunMinutes) * time.Minute
		if slot.End.Sub(slot.Start) != expected {
			t.Errorf("slot %s duration %s disagrees with %s", slot.ID, slot.End.Sub(slot.Start), expected)
		}
		// Every slot lies in an admissible calendar window.
		if !engine.covered(slot.Start, slot.End) {
			t.Errorf("slot %s window [%s, %s) is not calendar admissible", slot.ID, slot.Start, slot.End)
		}
	}
	// No overlap on the same machine.
	for i, a := range result.Slots {
		for _, b := range result.Slots[i+1:] {
			if a.MachineID == b.MachineID && a.Overlaps(b) {
				t.Errorf("slots %s and %s overlap on %s", a.ID, b.ID, a.MachineID)
			}
		}
	}
	// Predecessors finish (plus transfer) before their successors start.
	for _, op := range request.Operations {
		slot, ok := byOp[op.ID]
		if !ok {
			continue
		}
		for _, pred := range op.Predecessors {
			predSlot, ok := byOp[pred]
			if !ok {
				continue
			}
			if predSlot.End.Add(transfer).After(slot.Start) {
				t.Errorf("operation %s starts %s before its predecessor handoff", op.ID, slot.Start)
			}
		}
	}
	// Bucket planned minutes match the slots assigned to them.
	for _, bucket := range result.Buckets {
		var planned int
		for _, slot := range result.Slots {
			if slot.MachineID == bucket.MachineID &&
				slot.Start.UTC().Format(time.DateOnly) == bucket.Date {
				planned += slot.SetupMinutes + slot.RunMinutes
			}
		}
		if planned != bucket.PlannedMinutes {
			t.Errorf("bucket (%s, %s) planned = %d, slots sum to %d",
				bucket.MachineID, bucket.Date, bucket.PlannedMinutes, planned)
		}
		if bucket.IsOverloaded != (bucket.PlannedMinutes > bucket.AvailableMinutes) {
			t.Errorf("bucket (%s, %s) overload flag inconsistent", bucket.MachineID, bucket.Date)
		}
	}
}

func TestPipeline_Determinism(t *testing.T) {
	first := runPipeline(t, chainRequest())
	second := runPipeline(t, chainRequest())
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different outputs")
	}
}

func TestPipeline_NoFeasibleMachine(t *testing.T) {
	request := chainRequest()
	request.Operations[0].MachineTypes = shopfloor.StringList{"edm"}
	result := runPipeline(t, request)

	if _, ok := slotByOperation(result, "o1"); ok {
		t.Error("expected o1 to stay unscheduled")
	}
	var foundResource, foundPrecedence bool
	for _, conflict := range result.Conflicts {
		switch conflict.Type {
		case shopfloor.ConflictResource:
			foundResource = true
		case shopfloor.ConflictPrecedenceViolation:
			// o2 cannot be placed either, its predecessor has no slot.
			foundPrecedence = true
		}
	}
	if !foundResource || !foundPrecedence {
		t.Errorf("expected resource and precedence conflicts, got %+v", result.Conflicts)
	}
}

func TestPipeline_CycleConflict(t *testing.T) {
	request := chainRequest()
	request.Operations[0].Predecessors = shopfloor.StringList{"o2"}
	result := runPipeline(t, request)

	var foundCycle bool
	for _, conflict := range result.Conflicts {
		if conflict.Type == shopfloor.ConflictPrecedenceViolation &&
			conflict.Severity == shopfloor.SeverityCritical {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatalf("expected a critical precedence conflict, got %+v", result.Conflicts)
	}
	// Cycle members are still placed best-effort.
	if len(result.Slots) != 2 {
		t.Errorf("expected best-effort placement of both cycle members, got %d slots", len(result.Slots))
	}
}

func TestPipeline_DeadlineMissed(t *testing.T) {
	request := chainRequest()
	due := at(monday, 8, 30)
	request.Operations[0].DueDate = &due
	result := runPipeline(t, request)

	if _, ok := slotByOperation(result, "o1"); !ok {
		t.Fatal("expected o1 to be scheduled despite the missed deadline")
	}
	var found bool
	for _, conflict := range result.Conflicts {
		if conflict.Type == shopfloor.ConflictDeadlineMissed {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a deadline_missed conflict, got %+v", result.Conflicts)
	}
}

func TestPipeline_CapacityOverload(t *testing.T) {
	request := chainRequest()
	request.Policy.AllowOverload = true
	request.Policy.MaxOverloadPct = 0.01
	// 10 setup + 470 run minutes fill the whole shift; 480 planned
	// minutes against 450 available (after breaks) is an overload.
	request.Operations = []shopfloor.Operation{
		{ID: "o1", WorkOrderID: "wo1", Family: "gears",
			MachineTypes: shopfloor.StringList{"mill"}, SetupMinutes: 10, RunMinutesPerUnit: 47},
	}
	result := runPipeline(t, request)

	var found bool
	for _, conflict := range result.Conflicts {
		if conflict.Type == shopfloor.ConflictCapacityOverload {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a capacity_overload conflict, got %+v", result.Conflicts)
	}
	if len(result.Buckets) != 1 || !result.Buckets[0].IsOverloaded {
		t.Errorf("expected an overloaded bucket, got %+v", result.Buckets)
	}
}

func TestPipeline_NonOptimalRunPenalty(t *testing.T) {
	start := at(monday, 8, 0)
	request := Request{
		PlanID:    "plan-1",
		StartTime: &start,
		Policy:    shopfloor.SchedulingPolicy{Rule: "fifo"},
		Machines: []shopfloor.Machine{
			{ID: "m1", Type: "mill", Efficiency: 1.0},
		},
		Capabilities: []shopfloor.MachineCapability{
			// The mill can serve lathe work, at a penalty.
			{ID: "c1", MachineID: "m1", MachineTypes: shopfloor.StringList{"lathe"}, Efficiency: 1.0},
		},
		WorkOrders: []shopfloor.WorkOrder{
			{ID: "wo1", Quantity: 10, CreatedAt: monday},
		},
		Operations: []shopfloor.Operation{
			{ID: "o1", WorkOrderID: "wo1", Family: "gears",
				MachineTypes: shopfloor.StringList{"lathe"}, RunMinutesPerUnit: 10},
		},
		Calendar: weekdayCalendar(),
	}
	result := runPipeline(t, request)
	slot, ok := slotByOperation(result, "o1")
	if !ok {
		t.Fatal("expected o1 to be scheduled")
	}
	// 10*10 nominal run minutes, times the 1.2 non-optimal factor.
	if slot.RunMinutes != 120 {
		t.Errorf("run minutes = %d, expected 120", slot.RunMinutes)
	}
}

func TestPipeline_SetupMatrixApplied(t *testing.T) {
	request := chainRequest()
	// Route both operations over the mill so o1 precedes o2 on the same
	// machine, with a changeover between their families.
	request.Operations[1].MachineTypes = shopfloor.StringList{"mill"}
	request.Operations[1].Family = "shafts"
	request.SetupMatrix = []shopfloor.SetupMatrixEntry{
		{FromFamily: "gears", ToFamily: "shafts", MachineType: "mill", ChangeoverMinutes: 45},
	}
	result := runPipeline(t, request)

	o2, ok := slotByOperation(result, "o2")
	if !ok {
		t.Fatal("expected o2 to be scheduled")
	}
	if o2.MachineID != "m1" {
		t.Fatalf("o2 machine = %s, expected m1", o2.MachineID)
	}
	// The matrix changeover replaces o2's declared setup minutes.
	if o2.SetupMinutes != 45 {
		t.Errorf("o2 setup minutes = %d, expected 45", o2.SetupMinutes)
	}
	o1, _ := slotByOperation(result, "o1")
	if !o2.Start.Equal(o1.End.Add(10 * time.Minute)) {
		t.Errorf("o2 start = %s, expected o1 end plus the transfer buffer", o2.Start)
	}
}

func TestPipeline_ExistingSlotsRespected(t *testing.T) {
	request := chainRequest()
	request.ExistingSlots = []shopfloor.ScheduleSlot{{
		ID: "busy", PlanID: "other-plan", MachineID: "m1",
		Start: at(monday, 8, 0), End: at(monday, 12, 0),
		Status: shopfloor.SlotStatusScheduled, Locked: true,
	}}
	result := runPipeline(t, request)
	o1, ok := slotByOperation(result, "o1")
	if !ok {
		t.Fatal("expected o1 to be scheduled")
	}
	if !o1.Start.Equal(at(monday, 12, 0)) {
		t.Errorf("o1 start = %s, expected 12:00 after the existing slot", o1.Start)
	}
}

func TestPipeline_ValidationError(t *testing.T) {
	request := chainRequest()
	request.Machines = nil
	if _, err := NewPipeline(Monitor{}).Run(slog.Default(), request); err == nil {
		t.Fatal("expected a validation error for missing machines")
	}
}
