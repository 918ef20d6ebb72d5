// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

func testSlot(id, planID string, startOffset, endOffset time.Duration) shopfloor.ScheduleSlot {
	return shopfloor.ScheduleSlot{
		ID: id, PlanID: planID, MachineID: "m1",
		Start: testStart.Add(startOffset), End: testStart.Add(endOffset),
		Status: shopfloor.SlotStatusScheduled,
	}
}

func TestCommitPlan(t *testing.T) {
	s := setupStore(t)
	// A stale unlocked slot and a locked one from a previous commit.
	stale := testSlot("stale", "p1", 0, time.Hour)
	locked := testSlot("locked", "p1", time.Hour, 2*time.Hour)
	locked.Locked = true
	for _, slot := range []shopfloor.ScheduleSlot{stale, locked} {
		if err := s.DB.Insert(&slot); err != nil {
			t.Fatal(err)
		}
	}

	// The scheduler echoes the locked slot back in its result; the
	// commit must neither duplicate nor move it.
	fresh := testSlot("fresh", "p1", 2*time.Hour, 3*time.Hour)
	buckets := []shopfloor.CapacityBucket{{
		PlanID: "p1", MachineID: "m1", Date: "2025-03-03",
		AvailableMinutes: 450, PlannedMinutes: 120, Utilization: 0.27,
	}}
	err := s.CommitPlan("p1", []shopfloor.ScheduleSlot{locked, fresh}, buckets)
	if err != nil {
		t.Fatal(err)
	}

	slots, err := s.GetSlots(testStart, testStart.Add(24*time.Hour), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots after commit, got %d", len(slots))
	}
	if slots[0].ID != "locked" || slots[1].ID != "fresh" {
		t.Errorf("expected locked and fresh to survive, got %s, %s", slots[0].ID, slots[1].ID)
	}

	var bucketCount int
	if err := s.DB.SelectOne(&bucketCount,
		"SELECT COUNT(*) FROM capacity_buckets WHERE plan_id = :plan_id",
		map[string]any{"plan_id": "p1"}); err != nil {
		t.Fatal(err)
	}
	if bucketCount != 1 {
		t.Errorf("expected 1 bucket, got %d", bucketCount)
	}
}

func TestCommitPlan_OtherPlansUntouched(t *testing.T) {
	s := setupStore(t)
	other := testSlot("other", "p2", 0, time.Hour)
	if err := s.DB.Insert(&other); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitPlan("p1", []shopfloor.ScheduleSlot{
		testSlot("fresh", "p1", time.Hour, 2*time.Hour),
	}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSlot("other"); err != nil {
		t.Errorf("slot of another plan was removed: %v", err)
	}
}

func TestGetSlots(t *testing.T) {
	s := setupStore(t)
	slots := []shopfloor.ScheduleSlot{
		testSlot("s1", "p1", 0, time.Hour),
		testSlot("s2", "p1", 2*time.Hour, 3*time.Hour),
		testSlot("s3", "p1", 30*time.Hour, 31*time.Hour),
	}
	slots[1].MachineID = "m2"
	for _, slot := range slots {
		if err := s.DB.Insert(&slot); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("window intersection", func(t *testing.T) {
		got, err := s.GetSlots(testStart, testStart.Add(24*time.Hour), "")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" {
			t.Errorf("expected s1, s2 ordered by start, got %+v", got)
		}
	})
	t.Run("machine filter", func(t *testing.T) {
		got, err := s.GetSlots(testStart, testStart.Add(24*time.Hour), "m2")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "s2" {
			t.Errorf("expected only s2, got %+v", got)
		}
	})
}

func TestGetSlot_NotFound(t *testing.T) {
	s := setupStore(t)
	if _, err := s.GetSlot("missing"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestUpdateSlot(t *testing.T) {
	s := setupStore(t)
	slot := testSlot("s1", "p1", 0, time.Hour)
	if err := s.DB.Insert(&slot); err != nil {
		t.Fatal(err)
	}

	status := shopfloor.SlotStatusInProgress
	updated, err := s.UpdateSlot("s1", SlotUpdate{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != shopfloor.SlotStatusInProgress {
		t.Errorf("status = %s, expected in_progress", updated.Status)
	}

	newStart := testStart.Add(4 * time.Hour)
	newEnd := testStart.Add(5 * time.Hour)
	updated, err = s.UpdateSlot("s1", SlotUpdate{Start: &newStart, End: &newEnd})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Start.Equal(newStart) || !updated.End.Equal(newEnd) {
		t.Errorf("window = [%s, %s), expected the moved window", updated.Start, updated.End)
	}
}

func TestUpdateSlot_Locked(t *testing.T) {
	s := setupStore(t)
	slot := testSlot("s1", "p1", 0, time.Hour)
	slot.Locked = true
	if err := s.DB.Insert(&slot); err != nil {
		t.Fatal(err)
	}

	newStart := testStart.Add(4 * time.Hour)
	if _, err := s.UpdateSlot("s1", SlotUpdate{Start: &newStart}); !errors.Is(err, ErrSlotLocked) {
		t.Errorf("expected ErrSlotLocked when moving a locked slot, got %v", err)
	}

	// A pure unlock is the one update a locked slot accepts.
	unlocked := false
	updated, err := s.UpdateSlot("s1", SlotUpdate{Locked: &unlocked})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Locked {
		t.Error("expected the slot to be unlocked")
	}
	if _, err := s.UpdateSlot("s1", SlotUpdate{Start: &newStart}); err != nil {
		t.Errorf("expected the unlocked slot to accept a move, got %v", err)
	}
}

func TestBulkUpdateSlots(t *testing.T) {
	s := setupStore(t)
	free := testSlot("free", "p1", 0, time.Hour)
	locked := testSlot("locked", "p1", 2*time.Hour, 3*time.Hour)
	locked.Locked = true
	for _, slot := range []shopfloor.ScheduleSlot{free, locked} {
		if err := s.DB.Insert(&slot); err != nil {
			t.Fatal(err)
		}
	}

	status := shopfloor.SlotStatusCompleted
	newStart := testStart.Add(6 * time.Hour)

	t.Run("all or nothing", func(t *testing.T) {
		_, err := s.BulkUpdateSlots(map[string]SlotUpdate{
			"free":   {Status: &status},
			"locked": {Start: &newStart},
		}, []string{"free", "locked"})
		if !errors.Is(err, ErrSlotLocked) {
			t.Fatalf("expected ErrSlotLocked, got %v", err)
		}
		// The free slot must not have been touched.
		slot, err := s.GetSlot("free")
		if err != nil {
			t.Fatal(err)
		}
		if slot.Status != shopfloor.SlotStatusScheduled {
			t.Errorf("free slot status = %s, expected untouched", slot.Status)
		}
	})

	t.Run("missing slot aborts the batch", func(t *testing.T) {
		_, err := s.BulkUpdateSlots(map[string]SlotUpdate{
			"free":    {Status: &status},
			"missing": {Status: &status},
		}, []string{"free", "missing"})
		if !errors.Is(err, ErrSlotNotFound) {
			t.Errorf("expected ErrSlotNotFound, got %v", err)
		}
	})

	t.Run("successful batch", func(t *testing.T) {
		updated, err := s.BulkUpdateSlots(map[string]SlotUpdate{
			"free": {Status: &status},
		}, []string{"free"})
		if err != nil {
			t.Fatal(err)
		}
		if len(updated) != 1 || updated[0].Status != shopfloor.SlotStatusCompleted {
			t.Errorf("unexpected batch result: %+v", updated)
		}
	})
}
