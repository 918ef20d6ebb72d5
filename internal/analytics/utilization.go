// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"math"
	"sort"
)

// Time split and reliability figures of one machine over the period.
type MachineUtilization struct {
	MachineID string `json:"machineId"`

	ProductiveMinutes float64 `json:"productiveMinutes"`
	SetupMinutes      float64 `json:"setupMinutes"`
	DowntimeMinutes   float64 `json:"downtimeMinutes"`
	IdleMinutes       float64 `json:"idleMinutes"`
	// Productive share of the period, in percent.
	UtilizationPct float64 `json:"utilizationPercentage"`

	FailureCount int `json:"failureCount"`
	// Mean time between failures, in hours of productive time.
	MTBFHours float64 `json:"mtbfHours"`
	// Mean time to repair, in minutes.
	MTTRMinutes float64 `json:"mttrMinutes"`
}

// Compute the productive/setup/downtime/idle split per machine.
// Unplanned downtime events count as failures for MTBF and MTTR.
func ComputeUtilization(input Input, period Period) []MachineUtilization {
	productive := make(map[string]float64)
	setup := make(map[string]float64)
	for _, session := range input.OperatorSessions {
		if !period.Contains(session.Start) {
			continue
		}
		productive[session.MachineID] += session.RunMinutes
		setup[session.MachineID] += session.SetupMinutes
	}
	downtime := make(map[string]float64)
	failureCount := make(map[string]int)
	failureMinutes := make(map[string]float64)
	for _, event := range input.DowntimeEvents {
		if !period.Contains(event.Start) {
			continue
		}
		downtime[event.MachineID] += event.DurationMinutes
		if plannedDowntimeReason(event.Reason) {
			continue
		}
		failureCount[event.MachineID]++
		failureMinutes[event.MachineID] += event.DurationMinutes
	}

	periodMinutes := period.Minutes()
	results := make([]MachineUtilization, 0, len(input.Machines))
	for _, machine := range input.Machines {
		idle := math.Max(0,
			periodMinutes-productive[machine.ID]-setup[machine.ID]-downtime[machine.ID])
		failures := failureCount[machine.ID]
		results = append(results, MachineUtilization{
			MachineID:         machine.ID,
			ProductiveMinutes: round2(productive[machine.ID]),
			SetupMinutes:      round2(setup[machine.ID]),
			DowntimeMinutes:   round2(downtime[machine.ID]),
			IdleMinutes:       round2(idle),
			UtilizationPct:    round2(safeDiv(productive[machine.ID], periodMinutes) * 100),
			FailureCount:      failures,
			MTBFHours:         round2(safeDiv(productive[machine.ID]/60, float64(failures))),
			MTTRMinutes:       round2(safeDiv(failureMinutes[machine.ID], float64(failures))),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].MachineID < results[j].MachineID })
	return results
}
