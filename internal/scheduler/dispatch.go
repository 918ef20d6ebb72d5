// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Dispatch rule used to order eligible operations within one
// dependency batch.
type Rule string

const (
	// Earliest due date first.
	RuleEDD Rule = "edd"
	// Shortest processing time first.
	RuleSPT Rule = "spt"
	// Smallest critical ratio (slack over remaining work) first.
	RuleCR Rule = "cr"
	// Oldest work order first.
	RuleFIFO Rule = "fifo"
	// Highest declared work order priority first.
	RulePriority Rule = "priority"
)

// Parse a dispatch rule from its config/request representation.
func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(s)) {
	case RuleEDD:
		return RuleEDD, nil
	case RuleSPT:
		return RuleSPT, nil
	case RuleCR:
		return RuleCR, nil
	case RuleFIFO:
		return RuleFIFO, nil
	case RulePriority:
		return RulePriority, nil
	}
	return "", fmt.Errorf("unknown dispatch rule %q", s)
}

// Numeric rank of the declared work order priorities.
var priorityRanks = map[string]float64{
	shopfloor.PriorityUrgent: 1,
	shopfloor.PriorityHigh:   2,
	shopfloor.PriorityNormal: 3,
	shopfloor.PriorityLow:    4,
}

// Compute the dispatch score of an operation under the given rule.
// Lower scores are scheduled earlier. Missing inputs yield +Inf so that
// the affected operations sort last. Ties are broken by operation id
// when sorting, for determinism.
func priorityScore(rule Rule, op shopfloor.Operation, workOrder shopfloor.WorkOrder, reference time.Time) float64 {
	switch rule {
	case RuleEDD:
		if workOrder.PlannedEnd == nil {
			return math.Inf(1)
		}
		return float64(workOrder.PlannedEnd.Sub(reference).Milliseconds())
	case RuleSPT:
		return float64(op.SetupMinutes) + op.RunMinutesPerUnit*float64(workOrder.Quantity)
	case RuleCR:
		if workOrder.PlannedEnd == nil {
			return math.Inf(1)
		}
		remainingWorkMs := op.RunMinutesPerUnit * float64(workOrder.Quantity) * 60000
		if remainingWorkMs <= 0 {
			return math.Inf(1)
		}
		return float64(workOrder.PlannedEnd.Sub(reference).Milliseconds()) / remainingWorkMs
	case RulePriority:
		if rank, ok := priorityRanks[workOrder.Priority]; ok {
			return rank
		}
		return priorityRanks[shopfloor.PriorityNormal]
	case RuleFIFO:
		return float64(workOrder.CreatedAt.UnixMilli())
	}
	return math.Inf(1)
}
