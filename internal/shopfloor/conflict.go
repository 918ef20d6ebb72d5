// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

// Conflict types reported by the scheduler.
const (
	ConflictPrecedenceViolation = "precedence_violation"
	ConflictResource            = "resource_conflict"
	ConflictCapacityOverload    = "capacity_overload"
	ConflictDeadlineMissed      = "deadline_missed"
)

// Conflict severities, from least to most severe.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// A scheduling conflict. Conflicts never abort a scheduler run; they
// are collected and returned alongside the (possibly partial) slot set.
type SchedulingConflict struct {
	Type                string   `json:"type"`
	Severity            string   `json:"severity"`
	Description         string   `json:"description"`
	AffectedOperations  []string `json:"affectedOperations"`
	SuggestedResolution string   `json:"suggestedResolution,omitempty"`
}
