// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"math"
	"sort"
)

// A work order counts as on time when its actual start deviates from
// the planned start by no more than this many minutes.
const onTimeToleranceMinutes = 30

// Schedule adherence of one work order.
type WorkOrderAdherence struct {
	WorkOrderID  string  `json:"workOrderId"`
	DelayMinutes float64 `json:"delayMinutes"`
	OnTime       bool    `json:"onTime"`
	// 100 for a punctual start, reduced by 10 points per hour of delay.
	Score float64 `json:"score"`
}

// Schedule adherence over all work orders that started in the period.
type AdherenceSummary struct {
	WorkOrders      []WorkOrderAdherence `json:"workOrders"`
	OnTimeCount     int                  `json:"onTimeCount"`
	OnTimePct       float64              `json:"onTimePercentage"`
	AvgDelayMinutes float64              `json:"avgDelayMinutes"`
	AvgScore        float64              `json:"avgScore"`
}

// Compute schedule adherence. Work orders without both a planned and
// an actual start are skipped; they have nothing to adhere to yet.
func ComputeAdherence(input Input, period Period) AdherenceSummary {
	var summary AdherenceSummary
	var delaySum, scoreSum float64
	for _, workOrder := range input.WorkOrders {
		if workOrder.PlannedStart == nil || workOrder.ActualStart == nil {
			continue
		}
		if !period.Contains(*workOrder.ActualStart) {
			continue
		}
		deviation := workOrder.ActualStart.Sub(*workOrder.PlannedStart).Minutes()
		delay := math.Max(0, deviation)
		onTime := math.Abs(deviation) <= onTimeToleranceMinutes
		score := math.Max(0, 100-(delay/60)*10)

		summary.WorkOrders = append(summary.WorkOrders, WorkOrderAdherence{
			WorkOrderID:  workOrder.ID,
			DelayMinutes: round2(delay),
			OnTime:       onTime,
			Score:        round2(score),
		})
		if onTime {
			summary.OnTimeCount++
		}
		delaySum += delay
		scoreSum += score
	}
	sort.Slice(summary.WorkOrders, func(i, j int) bool {
		return summary.WorkOrders[i].WorkOrderID < summary.WorkOrders[j].WorkOrderID
	})
	count := float64(len(summary.WorkOrders))
	summary.OnTimePct = round2(safeDiv(float64(summary.OnTimeCount), count) * 100)
	summary.AvgDelayMinutes = round2(safeDiv(delaySum, count))
	summary.AvgScore = round2(safeDiv(scoreSum, count))
	return summary
}
