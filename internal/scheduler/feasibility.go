// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"sort"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// A machine on which an operation can run, together with the matched
// capability record. Optimal means the machine's native type is among
// the operation's accepted machine types; non-optimal matches get a
// conservative run time penalty in the main loop.
type machineCandidate struct {
	machine    shopfloor.Machine
	capability shopfloor.MachineCapability
	optimal    bool
}

// Find all machines on which the operation is feasible: some
// capability of the machine intersects the operation's machine types.
// When several capabilities of one machine match, the one with the
// highest efficiency wins. Candidates come back sorted by machine id
// for deterministic iteration.
func feasibleMachines(
	op shopfloor.Operation,
	machines []shopfloor.Machine,
	capabilitiesByMachine map[string][]shopfloor.MachineCapability,
) []machineCandidate {

	var candidates []machineCandidate
	for _, machine := range machines {
		var best *shopfloor.MachineCapability
		for _, capability := range capabilitiesByMachine[machine.ID] {
			if !capability.MachineTypes.Intersects(op.MachineTypes) {
				continue
			}
			if best == nil || capability.Efficiency > best.Efficiency {
				c := capability
				best = &c
			}
		}
		if best == nil {
			continue
		}
		candidates = append(candidates, machineCandidate{
			machine:    machine,
			capability: *best,
			optimal:    op.MachineTypes.Contains(machine.Type),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].machine.ID < candidates[j].machine.ID
	})
	return candidates
}

// Clamp the combined efficiency of a machine and its capability to
// avoid division blow-ups in run time adjustment.
func clampEfficiency(efficiency float64) float64 {
	if efficiency < 0.01 {
		return 0.01
	}
	if efficiency > 1.0 {
		return 1.0
	}
	return efficiency
}
