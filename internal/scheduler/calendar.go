// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// An absolute time window [Start, End).
type window struct {
	start time.Time
	end   time.Time
}

// One shift with its clock strings resolved to minutes after midnight.
// Overnight shifts (end <= start) roll into the next calendar day.
type parsedShift struct {
	name         string
	startMinutes int
	endMinutes   int
	breakMinutes int
	overnight    bool
}

func (s parsedShift) durationMinutes() int {
	if s.overnight {
		return s.endMinutes + 24*60 - s.startMinutes
	}
	return s.endMinutes - s.startMinutes
}

// Calendar engine deciding which time windows are admissible under the
// shop floor calendar. All checks work on UTC instants.
type calendarEngine struct {
	shifts      []parsedShift
	workingDays map[int]bool
	exceptions  map[string]bool
}

// Parse the calendar into an engine. Malformed shift clock strings are
// reported in the returned error and the affected shifts are skipped,
// so a pre-validated caller can still use the engine.
func newCalendarEngine(cal shopfloor.Calendar) (*calendarEngine, error) {
	engine := &calendarEngine{
		workingDays: make(map[int]bool, len(cal.WorkingDays)),
		exceptions:  make(map[string]bool, len(cal.Exceptions)),
	}
	for _, day := range cal.WorkingDays {
		engine.workingDays[day] = true
	}
	for _, date := range cal.Exceptions {
		engine.exceptions[date] = true
	}
	var errs []error
	for _, shift := range cal.Shifts {
		startMinutes, err := shopfloor.ParseClock(shift.Start)
		if err != nil {
			errs = append(errs, fmt.Errorf("shift %q: %w", shift.Name, err))
			continue
		}
		endMinutes, err := shopfloor.ParseClock(shift.End)
		if err != nil {
			errs = append(errs, fmt.Errorf("shift %q: %w", shift.Name, err))
			continue
		}
		engine.shifts = append(engine.shifts, parsedShift{
			name:         shift.Name,
			startMinutes: startMinutes,
			endMinutes:   endMinutes,
			breakMinutes: shift.BreakMinutes,
			overnight:    endMinutes <= startMinutes,
		})
	}
	return engine, errors.Join(errs...)
}

// Check if the given day is a working day: its weekday is configured
// and its date is not an exception.
func (e *calendarEngine) isWorkingDay(t time.Time) bool {
	if !e.workingDays[int(t.UTC().Weekday())] {
		return false
	}
	return !e.exceptions[t.UTC().Format(time.DateOnly)]
}

// Midnight of the UTC calendar day containing t.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Absolute shift windows for shifts starting on the given day. A shift
// only contributes when its start day is a working day; an overnight
// shift spills into the following day regardless of that day's status.
func (e *calendarEngine) shiftWindows(day time.Time) []window {
	if !e.isWorkingDay(day) {
		return nil
	}
	base := dayStart(day)
	windows := make([]window, 0, len(e.shifts))
	for _, shift := range e.shifts {
		start := base.Add(time.Duration(shift.startMinutes) * time.Minute)
		end := base.Add(time.Duration(shift.endMinutes) * time.Minute)
		if shift.overnight {
			end = end.Add(24 * time.Hour)
		}
		windows = append(windows, window{start: start, end: end})
	}
	return windows
}

// Merged shift windows of all days whose shifts can touch [t0, t1).
// Overlapping and back-to-back windows are coalesced, so contiguous
// shifts across midnight form a single window.
func (e *calendarEngine) mergedWindows(t0, t1 time.Time) []window {
	var windows []window
	// Start one day early so overnight shifts of the previous day are seen.
	for day := dayStart(t0).AddDate(0, 0, -1); day.Before(t1); day = day.AddDate(0, 0, 1) {
		windows = append(windows, e.shiftWindows(day)...)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].start.Before(windows[j].start)
	})
	var merged []window
	for _, w := range windows {
		if len(merged) > 0 && !w.start.After(merged[len(merged)-1].end) {
			if w.end.After(merged[len(merged)-1].end) {
				merged[len(merged)-1].end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// Check if [t0, t1) is fully covered by the (coalesced) shift windows
// of working days. This is the admissibility check used for placement.
func (e *calendarEngine) covered(t0, t1 time.Time) bool {
	if !t0.Before(t1) {
		return true
	}
	for _, w := range e.mergedWindows(t0, t1) {
		if !w.start.After(t0) && !w.end.Before(t1) {
			return true
		}
	}
	return false
}

// Stricter variant of covered requiring [t0, t1) to fit into a single
// shift window, without coalescing adjacent shifts.
func (e *calendarEngine) fitsSingleShift(t0, t1 time.Time) bool {
	if !t0.Before(t1) {
		return true
	}
	for day := dayStart(t0).AddDate(0, 0, -1); day.Before(t1); day = day.AddDate(0, 0, 1) {
		for _, w := range e.shiftWindows(day) {
			if !w.start.After(t0) && !w.end.Before(t1) {
				return true
			}
		}
	}
	return false
}

// Available working minutes on the given day: the sum of all shift
// durations minus their break minutes. Breaks reduce capacity but do
// not fragment shifts for placement.
func (e *calendarEngine) availableMinutesOn(day time.Time) int {
	if !e.isWorkingDay(day) {
		return 0
	}
	total := 0
	for _, shift := range e.shifts {
		minutes := shift.durationMinutes() - shift.breakMinutes
		if minutes > 0 {
			total += minutes
		}
	}
	return total
}
