// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import "github.com/millwright-dev/millwright/internal/shopfloor"

// Lookup key of the setup matrix.
type setupKey struct {
	fromFamily  string
	toFamily    string
	machineType string
}

// Sequence-dependent changeover minutes between operation families,
// keyed by machine type.
type setupMatrix map[setupKey]int

func newSetupMatrix(entries []shopfloor.SetupMatrixEntry) setupMatrix {
	matrix := make(setupMatrix, len(entries))
	for _, entry := range entries {
		matrix[setupKey{
			fromFamily:  entry.FromFamily,
			toFamily:    entry.ToFamily,
			machineType: entry.MachineType,
		}] = entry.ChangeoverMinutes
	}
	return matrix
}

// Resolve the setup minutes for the incoming operation on a machine of
// the given type, considering the operation previously scheduled there.
// An exact matrix entry wins; otherwise the operation's declared setup
// time applies. Negative values are clamped to zero.
func (m setupMatrix) setupMinutes(prev *shopfloor.Operation, op shopfloor.Operation, machineType string) int {
	minutes := op.SetupMinutes
	if prev != nil {
		key := setupKey{fromFamily: prev.Family, toFamily: op.Family, machineType: machineType}
		if changeover, ok := m[key]; ok {
			minutes = changeover
		}
	}
	if minutes < 0 {
		return 0
	}
	return minutes
}
