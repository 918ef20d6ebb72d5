// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Placement grid resolution. Matches the shop floor reporting
// resolution and bounds the worst case search effort.
const placementGridMinutes = 15

// Round t up to the next placement grid boundary.
func roundUpToGrid(t time.Time) time.Time {
	grid := time.Duration(placementGridMinutes) * time.Minute
	rounded := t.Truncate(grid)
	if rounded.Before(t) {
		rounded = rounded.Add(grid)
	}
	return rounded
}

// Search the earliest start on a machine such that [start, start+d) is
// calendar admissible and does not overlap any of the machine's
// existing non-cancelled slots. The cursor starts at `now` rounded up
// to the grid, or at `notBefore` when that is later: predecessor
// handoffs may place the cursor off-grid on purpose. The search is
// bounded to the horizon; if no start fits, the horizon endpoint is
// returned with ok=false and the caller records the failure.
func earliestAvailable(
	cal *calendarEngine,
	slots []shopfloor.ScheduleSlot,
	duration time.Duration,
	now, notBefore time.Time,
	horizon time.Duration,
) (start time.Time, ok bool) {

	horizonEnd := now.Add(horizon)
	cursor := roundUpToGrid(now)
	if notBefore.After(cursor) {
		cursor = notBefore
	}

	// Every iteration advances the cursor by at least one grid step or
	// to the end of a blocking slot, so this bound guarantees termination.
	grid := time.Duration(placementGridMinutes) * time.Minute
	maxSteps := int(horizon/grid) + len(slots) + 1
	for range maxSteps {
		end := cursor.Add(duration)
		if end.After(horizonEnd) {
			return horizonEnd, false
		}
		if blocking, conflict := firstConflict(slots, cursor, end); conflict {
			cursor = roundUpToGrid(blocking.End)
			continue
		}
		if cal.covered(cursor, end) {
			return cursor, true
		}
		cursor = cursor.Add(grid)
	}
	return horizonEnd, false
}

// Find the first existing slot conflicting with [t0, t1). Cancelled
// slots do not block. Slots must be sorted by start time.
func firstConflict(slots []shopfloor.ScheduleSlot, t0, t1 time.Time) (shopfloor.ScheduleSlot, bool) {
	for _, slot := range slots {
		if slot.Status == shopfloor.SlotStatusCancelled {
			continue
		}
		if slot.Start.Before(t1) && t0.Before(slot.End) {
			return slot, true
		}
		if !slot.Start.Before(t1) {
			break
		}
	}
	return shopfloor.ScheduleSlot{}, false
}
