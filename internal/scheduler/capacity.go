// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Group the produced slots by (machine, UTC date of slot start) and
// derive the utilization figures. Buckets are emitted only for days
// with at least one slot, sorted by machine id and date.
func buildCapacityBuckets(planID string, slots []shopfloor.ScheduleSlot, cal *calendarEngine) []shopfloor.CapacityBucket {
	type bucketKey struct {
		machineID string
		date      string
	}
	planned := make(map[bucketKey]int)
	for _, slot := range slots {
		key := bucketKey{
			machineID: slot.MachineID,
			date:      slot.Start.UTC().Format(time.DateOnly),
		}
		planned[key] += slot.SetupMinutes + slot.RunMinutes
	}

	keys := make([]bucketKey, 0, len(planned))
	for key := range planned {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].machineID != keys[j].machineID {
			return keys[i].machineID < keys[j].machineID
		}
		return keys[i].date < keys[j].date
	})

	buckets := make([]shopfloor.CapacityBucket, 0, len(keys))
	for _, key := range keys {
		day, err := time.Parse(time.DateOnly, key.date)
		if err != nil {
			// Unreachable, the date was formatted above.
			continue
		}
		available := cal.availableMinutesOn(day)
		utilization := 0.0
		if available > 0 {
			utilization = float64(planned[key]) / float64(available)
		}
		overloadPct := math.Max(0, (utilization-1.0)*100)
		buckets = append(buckets, shopfloor.CapacityBucket{
			PlanID:           planID,
			MachineID:        key.machineID,
			Date:             key.date,
			AvailableMinutes: available,
			PlannedMinutes:   planned[key],
			Utilization:      round2(utilization),
			IsOverloaded:     utilization > 1.0,
			OverloadPct:      round2(overloadPct),
		})
	}
	return buckets
}

// Round to two decimal places, for display precision.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
