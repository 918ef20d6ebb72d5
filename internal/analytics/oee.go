// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"sort"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// In the absence of a declared standard cycle time, the ideal cycle
// time is estimated as this fraction of the observed average.
// TODO: supersede with a per-operation standard cycle time once the
// routing master data carries one.
const idealCycleFactor = 0.9

// Overall equipment effectiveness of one machine over the period.
type MachineOEE struct {
	MachineID string `json:"machineId"`
	// The three OEE factors, each in [0, 1].
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	// The product of the three factors.
	OEE float64 `json:"oee"`

	PlannedRuntimeMinutes    float64 `json:"plannedRuntimeMinutes"`
	UnplannedDowntimeMinutes float64 `json:"unplannedDowntimeMinutes"`
	TotalParts               int     `json:"totalParts"`
	GoodParts                int     `json:"goodParts"`
}

// Compute OEE per machine. Machines without any record in the period
// report all factors as zero.
func ComputeOEE(input Input, period Period) []MachineOEE {
	plannedRuntime := make(map[string]float64)
	for _, slot := range input.ScheduleSlots {
		if slot.Status == shopfloor.SlotStatusCancelled || !period.Contains(slot.Start) {
			continue
		}
		plannedRuntime[slot.MachineID] += slot.End.Sub(slot.Start).Minutes()
	}
	unplannedDowntime := make(map[string]float64)
	for _, event := range input.DowntimeEvents {
		if !period.Contains(event.Start) || plannedDowntimeReason(event.Reason) {
			continue
		}
		unplannedDowntime[event.MachineID] += event.DurationMinutes
	}
	totalParts := make(map[string]int)
	cycleSum := make(map[string]float64) // quantity-weighted
	for _, log := range input.ProductionLogs {
		if !period.Contains(log.Timestamp) {
			continue
		}
		totalParts[log.MachineID] += log.Quantity
		cycleSum[log.MachineID] += log.CycleTimeMinutes * float64(log.Quantity)
	}
	defectParts := make(map[string]int)
	for _, record := range input.QualityRecords {
		if !period.Contains(record.InspectedAt) {
			continue
		}
		if record.Result == shopfloor.QualityResultFail || record.Result == shopfloor.QualityResultRework {
			defectParts[record.MachineID]++
		}
	}

	results := make([]MachineOEE, 0, len(input.Machines))
	for _, machine := range input.Machines {
		planned := plannedRuntime[machine.ID]
		downtime := unplannedDowntime[machine.ID]
		parts := totalParts[machine.ID]
		good := max(0, parts-defectParts[machine.ID])

		availability := clampFactor(safeDiv(planned-downtime, planned))
		actualCycle := safeDiv(cycleSum[machine.ID], float64(parts))
		idealCycle := actualCycle * idealCycleFactor
		performance := clampFactor(safeDiv(idealCycle*float64(parts), actualCycle*float64(parts)))
		quality := clampFactor(safeDiv(float64(good), float64(parts)))

		results = append(results, MachineOEE{
			MachineID:                machine.ID,
			Availability:             round2(availability),
			Performance:              round2(performance),
			Quality:                  round2(quality),
			OEE:                      round2(availability * performance * quality),
			PlannedRuntimeMinutes:    round2(planned),
			UnplannedDowntimeMinutes: round2(downtime),
			TotalParts:               parts,
			GoodParts:                good,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].MachineID < results[j].MachineID })
	return results
}

// Downtime reasons that count as planned and do not reduce availability.
func plannedDowntimeReason(reason string) bool {
	return reason == shopfloor.DowntimeReasonSetup || reason == shopfloor.DowntimeReasonMaintenance
}

// OEE factors are ratios in [0, 1] by definition.
func clampFactor(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
