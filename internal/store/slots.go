// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

var (
	ErrSlotNotFound = errors.New("schedule slot not found")
	ErrSlotLocked   = errors.New("schedule slot is locked")
)

// Replace the stored plan with the given slots and buckets, in one
// transaction. Locked slots of the plan survive the replacement; the
// scheduler received them as existing slots and planned around them.
func (s Store) CommitPlan(planID string, slots []shopfloor.ScheduleSlot, buckets []shopfloor.CapacityBucket) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		"DELETE FROM schedule_slots WHERE plan_id = :plan_id AND locked = :locked",
		map[string]any{"plan_id": planID, "locked": false})
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	_, err = tx.Exec(
		"DELETE FROM capacity_buckets WHERE plan_id = :plan_id",
		map[string]any{"plan_id": planID})
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	for _, slot := range slots {
		if slot.Locked {
			continue
		}
		if err := tx.Insert(&slot); err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}
	for _, bucket := range buckets {
		if err := tx.Insert(&bucket); err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}
	return tx.Commit()
}

// Fetch slots whose window intersects [start, end), optionally
// restricted to one machine, sorted by start time.
func (s Store) GetSlots(start, end time.Time, machineID string) ([]shopfloor.ScheduleSlot, error) {
	query := `SELECT * FROM schedule_slots
		WHERE start_time < :end AND end_time > :start`
	params := map[string]any{"start": start, "end": end}
	if machineID != "" {
		query += " AND machine_id = :machine_id"
		params["machine_id"] = machineID
	}
	query += " ORDER BY start_time"
	var slots []shopfloor.ScheduleSlot
	_, err := s.DB.Select(&slots, query, params)
	return slots, err
}

func (s Store) GetSlot(id string) (shopfloor.ScheduleSlot, error) {
	var slot shopfloor.ScheduleSlot
	err := s.DB.SelectOne(&slot,
		"SELECT * FROM schedule_slots WHERE id = :id", map[string]any{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return slot, ErrSlotNotFound
	}
	return slot, err
}

// Partial update of one slot. Nil fields stay untouched.
type SlotUpdate struct {
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	MachineID *string    `json:"machineId,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Locked    *bool      `json:"locked,omitempty"`
}

func applyUpdate(slot *shopfloor.ScheduleSlot, update SlotUpdate) {
	if update.Start != nil {
		slot.Start = *update.Start
	}
	if update.End != nil {
		slot.End = *update.End
	}
	if update.MachineID != nil {
		slot.MachineID = *update.MachineID
	}
	if update.Status != nil {
		slot.Status = *update.Status
	}
	if update.Locked != nil {
		slot.Locked = *update.Locked
	}
}

// Moving or reassigning a locked slot is refused; unlocking it first
// is an explicit separate update.
func refusesUpdate(slot shopfloor.ScheduleSlot, update SlotUpdate) bool {
	if !slot.Locked {
		return false
	}
	if update.Locked != nil && !*update.Locked &&
		update.Start == nil && update.End == nil && update.MachineID == nil {
		return false
	}
	return true
}

// Apply a partial update to one slot. Returns ErrSlotLocked when the
// slot is locked and the update touches its placement.
func (s Store) UpdateSlot(id string, update SlotUpdate) (shopfloor.ScheduleSlot, error) {
	slot, err := s.GetSlot(id)
	if err != nil {
		return slot, err
	}
	if refusesUpdate(slot, update) {
		return slot, fmt.Errorf("%w: %s", ErrSlotLocked, id)
	}
	applyUpdate(&slot, update)
	if _, err := s.DB.Update(&slot); err != nil {
		return slot, err
	}
	return slot, nil
}

// Apply a batch of partial updates in one transaction. If any slot is
// missing or locked, nothing is changed.
func (s Store) BulkUpdateSlots(updates map[string]SlotUpdate, order []string) ([]shopfloor.ScheduleSlot, error) {
	slots := make([]shopfloor.ScheduleSlot, 0, len(order))
	for _, id := range order {
		slot, err := s.GetSlot(id)
		if err != nil {
			return nil, err
		}
		if refusesUpdate(slot, updates[id]) {
			return nil, fmt.Errorf("%w: %s", ErrSlotLocked, id)
		}
		applyUpdate(&slot, updates[id])
		slots = append(slots, slot)
	}
	tx, err := s.DB.Begin()
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if _, err := tx.Update(&slots[i]); err != nil {
			return nil, errors.Join(err, tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return slots, nil
}
