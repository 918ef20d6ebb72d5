// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

func TestLoadAnalyticsInput(t *testing.T) {
	s := setupStore(t)
	inside := testStart.Add(2 * time.Hour)
	outside := testStart.Add(48 * time.Hour)
	records := []any{
		&shopfloor.Machine{ID: "m1", Type: "mill"},
		&shopfloor.WorkOrder{ID: "wo1", CreatedAt: testStart},
		&shopfloor.ProductionLog{ID: "p1", MachineID: "m1", Timestamp: inside, Quantity: 10},
		&shopfloor.ProductionLog{ID: "p2", MachineID: "m1", Timestamp: outside, Quantity: 5},
		&shopfloor.DowntimeEvent{ID: "d1", MachineID: "m1", Start: inside,
			DurationMinutes: 15, Reason: "breakdown"},
		&shopfloor.QualityRecord{ID: "q1", MachineID: "m1", InspectedAt: inside,
			Result: shopfloor.QualityResultPass},
		&shopfloor.OperatorSession{ID: "os1", MachineID: "m1", Operator: "jdoe",
			Start: inside, RunMinutes: 90},
		&shopfloor.ScheduleSlot{ID: "s1", PlanID: "p1", MachineID: "m1",
			Start: inside, End: inside.Add(time.Hour), Status: shopfloor.SlotStatusScheduled},
	}
	for _, record := range records {
		if err := s.AppendObservation(record); err != nil {
			t.Fatal(err)
		}
	}

	input, err := s.LoadAnalyticsInput(testStart, testStart.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(input.Machines) != 1 || len(input.WorkOrders) != 1 {
		t.Errorf("expected 1 machine and 1 work order, got %d/%d",
			len(input.Machines), len(input.WorkOrders))
	}
	// The out-of-window production log stays behind.
	if len(input.ProductionLogs) != 1 || input.ProductionLogs[0].ID != "p1" {
		t.Errorf("expected only p1, got %+v", input.ProductionLogs)
	}
	if len(input.DowntimeEvents) != 1 || len(input.QualityRecords) != 1 {
		t.Errorf("expected 1 downtime event and 1 quality record, got %d/%d",
			len(input.DowntimeEvents), len(input.QualityRecords))
	}
	if len(input.OperatorSessions) != 1 || len(input.ScheduleSlots) != 1 {
		t.Errorf("expected 1 session and 1 slot, got %d/%d",
			len(input.OperatorSessions), len(input.ScheduleSlots))
	}
}
