// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"time"

	"github.com/millwright-dev/millwright/internal/shopfloor"
	"github.com/millwright-dev/millwright/internal/store"
)

// Request body for POST /scheduling/preview.
type SchedulingPreviewRequest struct {
	// The plan id under which the slots are keyed. Required.
	PlanID string `json:"planId"`
	// Restrict scheduling to these work orders. Empty means all.
	WorkOrderIDs []string `json:"workOrderIds,omitempty"`
	// The plan start; defaults to the wall clock.
	StartTime *time.Time `json:"startTime,omitempty"`
	// Policy overrides; unset fields fall back to the configured defaults.
	Policy *shopfloor.SchedulingPolicy `json:"policy,omitempty"`
	// When set, the produced plan is persisted and announced over MQTT
	// instead of being discarded after the response.
	Commit bool `json:"commit,omitempty"`
}

// Response body for POST /scheduling/preview.
type SchedulingPreviewResponse struct {
	Slots     []shopfloor.ScheduleSlot       `json:"slots"`
	Buckets   []shopfloor.CapacityBucket     `json:"buckets"`
	Conflicts []shopfloor.SchedulingConflict `json:"conflicts"`
	Metrics   SchedulingMetrics              `json:"metrics"`
}

// Aggregate figures of one produced plan.
type SchedulingMetrics struct {
	ScheduledOperations int     `json:"scheduledOperations"`
	TotalOperations     int     `json:"totalOperations"`
	ConflictCount       int     `json:"conflictCount"`
	AvgUtilization      float64 `json:"avgUtilization"`
}

// Request body for POST /schedule/validate.
type ValidateScheduleRequest struct {
	Slots []shopfloor.ScheduleSlot `json:"slots"`
}

// Response body for POST /schedule/validate.
type ValidateScheduleResponse struct {
	Conflicts []shopfloor.SchedulingConflict `json:"conflicts"`
}

// One entry of a POST /schedule/bulk-update request.
type SlotUpdateEntry struct {
	ID      string           `json:"id"`
	Updates store.SlotUpdate `json:"updates"`
}

// Request body for POST /schedule/bulk-update. The request is atomic:
// if any slot is missing or locked, no slot is changed.
type BulkUpdateRequest struct {
	Updates []SlotUpdateEntry `json:"updates"`
}

// Response body for POST /schedule/bulk-update.
type BulkUpdateResponse struct {
	Slots []shopfloor.ScheduleSlot `json:"slots"`
}
