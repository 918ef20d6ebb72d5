// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/millwright-dev/millwright/internal/analytics"
	"github.com/millwright-dev/millwright/internal/conf"
	"github.com/millwright-dev/millwright/internal/mqtt"
	"github.com/millwright-dev/millwright/internal/scheduler"
	"github.com/millwright-dev/millwright/internal/shopfloor"
	"github.com/millwright-dev/millwright/internal/store"
	"github.com/sapcc/go-bits/httpext"
)

type API interface {
	// Init the API mux and bind the handlers.
	Init(context.Context)
}

type api struct {
	Pipeline  scheduler.Pipeline
	Store     store.Store
	MQTT      mqtt.Client
	config    conf.SchedulerConfig
	shopFloor conf.ShopFloorConfig
	monitor   Monitor
}

func NewAPI(
	config conf.SchedulerConfig,
	shopFloor conf.ShopFloorConfig,
	pipeline scheduler.Pipeline,
	s store.Store,
	mqttClient mqtt.Client,
	m Monitor,
) API {
	return &api{
		Pipeline:  pipeline,
		Store:     s,
		MQTT:      mqttClient,
		config:    config,
		shopFloor: shopFloor,
		monitor:   m,
	}
}

// Init the API mux and bind the handlers.
func (api *api) Init(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", api.Up)
	mux.HandleFunc("POST /scheduling/preview", api.SchedulingPreview)
	mux.HandleFunc("GET /schedule", api.GetSchedule)
	mux.HandleFunc("PATCH /schedule/slots/{id}", api.PatchSlot)
	mux.HandleFunc("POST /schedule/validate", api.ValidateSchedule)
	mux.HandleFunc("POST /schedule/bulk-update", api.BulkUpdate)
	mux.HandleFunc("GET /analytics/kpis", api.AnalyticsKPIs)
	mux.HandleFunc("GET /analytics/oee", api.AnalyticsOEE)
	mux.HandleFunc("GET /analytics/adherence", api.AnalyticsAdherence)
	mux.HandleFunc("GET /analytics/utilization", api.AnalyticsUtilization)
	mux.HandleFunc("GET /analytics/quality", api.AnalyticsQuality)
	slog.Info("api listening on", "port", api.config.Port)
	addr := fmt.Sprintf(":%d", api.config.Port)
	if err := httpext.ListenAndServeContext(ctx, addr, mux); err != nil {
		panic(err)
	}
}

// Helper to respond to the request with the given code and error.
// Also adds monitoring for the time it took to handle the request.
type apihelper struct {
	api     *api
	w       http.ResponseWriter
	r       *http.Request
	pattern string
	t       time.Time
}

func (api *api) newHelper(w http.ResponseWriter, r *http.Request, pattern string) apihelper {
	return apihelper{api: api, w: w, r: r, pattern: pattern, t: time.Now()}
}

// Respond to the request with the given code and error.
// Also log the time it took to handle the request.
func (h apihelper) respond(code int, err error, text string) {
	if h.api.monitor.apiRequestsTimer != nil {
		observer := h.api.monitor.apiRequestsTimer.WithLabelValues(
			h.r.Method,
			h.pattern,
			strconv.Itoa(code),
			text, // Internal error messages should not face the monitor.
		)
		observer.Observe(time.Since(h.t).Seconds())
	}
	if err != nil {
		slog.Error("failed to handle request", "error", err)
		http.Error(h.w, text, code)
		return
	}
	// If there was no error, nothing else to do.
}

// Encode the response as json and finish the request.
func (h apihelper) respondJSON(response any) {
	h.w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(h.w).Encode(response); err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to encode response")
		return
	}
	h.respond(http.StatusOK, nil, "Success")
}

// Handle the GET request to check if the API is up.
func (api *api) Up(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/up")
	h.respond(http.StatusOK, nil, "Success")
}

// Handle the POST request to produce a schedule plan. The plan is
// returned to the caller; with commit=true it is also persisted and
// announced on the mqtt topics.
func (api *api) SchedulingPreview(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/scheduling/preview")
	defer r.Body.Close()

	// If configured, log out the complete request body.
	if api.config.LogRequestBodies {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.respond(http.StatusInternalServerError, err, "failed to read request body")
			return
		}
		slog.Info("request body", "body", string(body))
		r.Body = io.NopCloser(bytes.NewBuffer(body)) // Restore the body for further processing
	}

	var requestData SchedulingPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	if requestData.PlanID == "" {
		h.respond(http.StatusBadRequest, errors.New("missing planId"), "missing planId")
		return
	}
	snapshot, err := api.Store.LoadSnapshot(requestData.WorkOrderIDs)
	if err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to load scheduling inputs")
		return
	}
	policy := api.config.DefaultPolicy
	if requestData.Policy != nil {
		policy = *requestData.Policy
	}
	result, err := api.Pipeline.Run(slog.Default(), scheduler.Request{
		PlanID:        requestData.PlanID,
		StartTime:     requestData.StartTime,
		Policy:        policy,
		Operations:    snapshot.Operations,
		WorkOrders:    snapshot.WorkOrders,
		Machines:      snapshot.Machines,
		Capabilities:  snapshot.Capabilities,
		Calendar:      api.shopFloor.Calendar,
		SetupMatrix:   api.shopFloor.SetupMatrix,
		ExistingSlots: snapshot.ExistingSlots,
	})
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid scheduling request")
		return
	}
	if requestData.Commit {
		if err := api.Store.CommitPlan(requestData.PlanID, result.Slots, result.Buckets); err != nil {
			h.respond(http.StatusInternalServerError, err, "failed to persist plan")
			return
		}
		api.MQTT.Publish(mqtt.TopicPlans, result)
		if len(result.Conflicts) > 0 {
			api.MQTT.Publish(mqtt.TopicConflicts, result.Conflicts)
		}
	}
	h.respondJSON(SchedulingPreviewResponse{
		Slots:     result.Slots,
		Buckets:   result.Buckets,
		Conflicts: result.Conflicts,
		Metrics:   planMetrics(snapshot, result),
	})
}

func planMetrics(snapshot store.Snapshot, result *scheduler.Result) SchedulingMetrics {
	metrics := SchedulingMetrics{
		ScheduledOperations: len(result.Slots),
		TotalOperations:     len(snapshot.Operations),
		ConflictCount:       len(result.Conflicts),
	}
	if len(result.Buckets) > 0 {
		var sum float64
		for _, bucket := range result.Buckets {
			sum += bucket.Utilization
		}
		metrics.AvgUtilization = sum / float64(len(result.Buckets))
	}
	return metrics
}

// Handle the GET request for the slots in a time range.
func (api *api) GetSchedule(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/schedule")
	start, err := parseTimeParam(r, "start", time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid start parameter")
		return
	}
	end, err := parseTimeParam(r, "end", time.Now().UTC().AddDate(0, 0, 7))
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid end parameter")
		return
	}
	slots, err := api.Store.GetSlots(start, end, r.URL.Query().Get("machineId"))
	if err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to load slots")
		return
	}
	h.respondJSON(slots)
}

// Handle the PATCH request to partially update one slot. Updates to
// locked slots are rejected with a conflict.
func (api *api) PatchSlot(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/schedule/slots/{id}")
	defer r.Body.Close()
	var update store.SlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	slot, err := api.Store.UpdateSlot(r.PathValue("id"), update)
	switch {
	case errors.Is(err, store.ErrSlotNotFound):
		h.respond(http.StatusNotFound, err, "slot not found")
		return
	case errors.Is(err, store.ErrSlotLocked):
		h.respond(http.StatusConflict, err, "slot is locked")
		return
	case err != nil:
		h.respond(http.StatusInternalServerError, err, "failed to update slot")
		return
	}
	h.respondJSON(slot)
}

// Handle the POST request to validate a set of slots without storing
// them. Returns the conflicts found.
func (api *api) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/schedule/validate")
	defer r.Body.Close()
	var requestData ValidateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	h.respondJSON(ValidateScheduleResponse{
		Conflicts: validateSlots(requestData.Slots),
	})
}

// Check a slot set for overlapping windows on the same machine and for
// slot durations that disagree with their setup and run minutes.
func validateSlots(slots []shopfloor.ScheduleSlot) []shopfloor.SchedulingConflict {
	conflicts := []shopfloor.SchedulingConflict{}
	for i, slot := range slots {
		expected := time.Duration(slot.SetupMinutes+slot.RunMinutes) * time.Minute
		if slot.End.Sub(slot.Start) != expected {
			conflicts = append(conflicts, shopfloor.SchedulingConflict{
				Type:     shopfloor.ConflictResource,
				Severity: shopfloor.SeverityMedium,
				Description: fmt.Sprintf(
					"slot %s duration disagrees with its setup and run minutes", slot.ID,
				),
				AffectedOperations: []string{slot.OperationID},
			})
		}
		if slot.Status == shopfloor.SlotStatusCancelled {
			continue
		}
		for _, other := range slots[i+1:] {
			if other.Status == shopfloor.SlotStatusCancelled ||
				other.MachineID != slot.MachineID || !slot.Overlaps(other) {
				continue
			}
			conflicts = append(conflicts, shopfloor.SchedulingConflict{
				Type:     shopfloor.ConflictResource,
				Severity: shopfloor.SeverityHigh,
				Description: fmt.Sprintf(
					"slots %s and %s overlap on machine %s", slot.ID, other.ID, slot.MachineID,
				),
				AffectedOperations:  []string{slot.OperationID, other.OperationID},
				SuggestedResolution: "move one of the slots to a free window",
			})
		}
	}
	return conflicts
}

// Handle the POST request to update several slots atomically. If any
// slot is missing or locked the whole request fails.
func (api *api) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/schedule/bulk-update")
	defer r.Body.Close()
	var requestData BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	updates := make(map[string]store.SlotUpdate, len(requestData.Updates))
	order := make([]string, 0, len(requestData.Updates))
	for _, entry := range requestData.Updates {
		updates[entry.ID] = entry.Updates
		order = append(order, entry.ID)
	}
	slots, err := api.Store.BulkUpdateSlots(updates, order)
	switch {
	case errors.Is(err, store.ErrSlotNotFound):
		h.respond(http.StatusNotFound, err, "slot not found")
		return
	case errors.Is(err, store.ErrSlotLocked):
		h.respond(http.StatusConflict, err, "a slot in the request is locked")
		return
	case err != nil:
		h.respond(http.StatusInternalServerError, err, "failed to update slots")
		return
	}
	h.respondJSON(BulkUpdateResponse{Slots: slots})
}

// Shared query handling of the analytics endpoints: period bounds plus
// optional machine and work order filters.
func (api *api) analyticsInput(r *http.Request) (analytics.Input, analytics.Period, error) {
	var input analytics.Input
	to, err := parseTimeParam(r, "to", time.Now().UTC())
	if err != nil {
		return input, analytics.Period{}, err
	}
	from, err := parseTimeParam(r, "from", to.AddDate(0, 0, -1))
	if err != nil {
		return input, analytics.Period{}, err
	}
	period := analytics.Period{From: from, To: to}
	input, err = api.Store.LoadAnalyticsInput(from, to)
	if err != nil {
		return input, period, err
	}
	filterAnalyticsInput(&input, r.URL.Query().Get("machineId"), r.URL.Query().Get("workOrderId"))
	return input, period, nil
}

func filterAnalyticsInput(input *analytics.Input, machineID, workOrderID string) {
	if machineID != "" {
		input.Machines = filter(input.Machines, func(m shopfloor.Machine) bool { return m.ID == machineID })
		input.ProductionLogs = filter(input.ProductionLogs, func(l shopfloor.ProductionLog) bool { return l.MachineID == machineID })
		input.DowntimeEvents = filter(input.DowntimeEvents, func(e shopfloor.DowntimeEvent) bool { return e.MachineID == machineID })
		input.QualityRecords = filter(input.QualityRecords, func(q shopfloor.QualityRecord) bool { return q.MachineID == machineID })
		input.ScheduleSlots = filter(input.ScheduleSlots, func(s shopfloor.ScheduleSlot) bool { return s.MachineID == machineID })
		input.OperatorSessions = filter(input.OperatorSessions, func(s shopfloor.OperatorSession) bool { return s.MachineID == machineID })
	}
	if workOrderID != "" {
		input.WorkOrders = filter(input.WorkOrders, func(w shopfloor.WorkOrder) bool { return w.ID == workOrderID })
		input.ProductionLogs = filter(input.ProductionLogs, func(l shopfloor.ProductionLog) bool { return l.WorkOrderID == workOrderID })
		input.QualityRecords = filter(input.QualityRecords, func(q shopfloor.QualityRecord) bool { return q.WorkOrderID == workOrderID })
		input.ScheduleSlots = filter(input.ScheduleSlots, func(s shopfloor.ScheduleSlot) bool { return s.WorkOrderID == workOrderID })
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Handle the GET request for the full KPI report.
func (api *api) AnalyticsKPIs(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/analytics/kpis")
	input, period, err := api.analyticsInput(r)
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid analytics request")
		return
	}
	h.respondJSON(analytics.Compute(input, period))
}

// Handle the GET request for the OEE figures.
func (api *api) AnalyticsOEE(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/analytics/oee")
	input, period, err := api.analyticsInput(r)
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid analytics request")
		return
	}
	h.respondJSON(analytics.ComputeOEE(input, period))
}

// Handle the GET request for the schedule adherence figures.
func (api *api) AnalyticsAdherence(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/analytics/adherence")
	input, period, err := api.analyticsInput(r)
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid analytics request")
		return
	}
	h.respondJSON(analytics.ComputeAdherence(input, period))
}

// Handle the GET request for the machine utilization figures.
func (api *api) AnalyticsUtilization(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/analytics/utilization")
	input, period, err := api.analyticsInput(r)
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid analytics request")
		return
	}
	h.respondJSON(analytics.ComputeUtilization(input, period))
}

// Handle the GET request for the quality summary.
func (api *api) AnalyticsQuality(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/analytics/quality")
	input, period, err := api.analyticsInput(r)
	if err != nil {
		h.respond(http.StatusBadRequest, err, "invalid analytics request")
		return
	}
	h.respondJSON(analytics.ComputeQuality(input, period))
}

func parseTimeParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	return t.UTC(), nil
}
