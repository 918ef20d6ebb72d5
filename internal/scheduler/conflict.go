// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"fmt"
	"strings"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

func cycleConflict(cycle []string) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictPrecedenceViolation,
		Severity: shopfloor.SeverityCritical,
		Description: fmt.Sprintf(
			"operations form a dependency cycle: %s", strings.Join(cycle, " -> "),
		),
		AffectedOperations:  cycle,
		SuggestedResolution: "remove one of the predecessor links to break the cycle",
	}
}

func unscheduledPredecessorConflict(opID string, missing []string) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictPrecedenceViolation,
		Severity: shopfloor.SeverityHigh,
		Description: fmt.Sprintf(
			"operation %s cannot be placed, predecessors %s have no scheduled slot",
			opID, strings.Join(missing, ", "),
		),
		AffectedOperations:  []string{opID},
		SuggestedResolution: "resolve the conflicts of the predecessor operations first",
	}
}

func noFeasibleMachineConflict(op shopfloor.Operation) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictResource,
		Severity: shopfloor.SeverityHigh,
		Description: fmt.Sprintf(
			"no machine has a capability matching operation %s (requires one of: %s)",
			op.ID, strings.Join(op.MachineTypes, ", "),
		),
		AffectedOperations:  []string{op.ID},
		SuggestedResolution: "add a matching machine capability or change the operation's machine types",
	}
}

func noTimeWithinHorizonConflict(opID string, horizonHours int) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictResource,
		Severity: shopfloor.SeverityCritical,
		Description: fmt.Sprintf(
			"operation %s cannot be placed within the %dh scheduling horizon",
			opID, horizonHours,
		),
		AffectedOperations:  []string{opID},
		SuggestedResolution: "extend the horizon, add capacity, or reduce the workload",
	}
}

func capacityOverloadConflict(opID, machineID, date string, utilization float64) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictCapacityOverload,
		Severity: shopfloor.SeverityMedium,
		Description: fmt.Sprintf(
			"machine %s is planned at %.0f%% of its capacity on %s",
			machineID, utilization*100, date,
		),
		AffectedOperations:  []string{opID},
		SuggestedResolution: "move work to another machine or day, or raise the overload tolerance",
	}
}

func deadlineMissedConflict(opID string) shopfloor.SchedulingConflict {
	return shopfloor.SchedulingConflict{
		Type:     shopfloor.ConflictDeadlineMissed,
		Severity: shopfloor.SeverityHigh,
		Description: fmt.Sprintf(
			"operation %s finishes after its due date", opID,
		),
		AffectedOperations:  []string{opID},
		SuggestedResolution: "raise the work order priority or reschedule with more capacity",
	}
}
