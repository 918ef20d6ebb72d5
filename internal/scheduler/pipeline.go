// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/millwright-dev/millwright/internal/shopfloor"
	"github.com/prometheus/client_golang/prometheus"
)

// One forward scheduling request. The request carries everything the
// pipeline needs; the pipeline itself does no I/O and keeps no state
// between runs, so independent plans can be scheduled concurrently.
type Request struct {
	// The plan id under which the produced slots are keyed.
	PlanID string
	// The plan start; defaults to the wall clock when nil. All slots
	// are placed at or after this instant.
	StartTime *time.Time
	// The scheduling policy. Unset fields are filled with defaults.
	Policy shopfloor.SchedulingPolicy

	Operations    []shopfloor.Operation
	WorkOrders    []shopfloor.WorkOrder
	Machines      []shopfloor.Machine
	Capabilities  []shopfloor.MachineCapability
	Calendar      shopfloor.Calendar
	SetupMatrix   []shopfloor.SetupMatrixEntry
	ExistingSlots []shopfloor.ScheduleSlot
}

// Output of one scheduler run. Slots appear in the deterministic order
// they were placed (batch index, dispatch priority, operation id).
type Result struct {
	Slots     []shopfloor.ScheduleSlot     `json:"slots"`
	Buckets   []shopfloor.CapacityBucket   `json:"buckets"`
	Conflicts []shopfloor.SchedulingConflict `json:"conflicts"`
}

type Pipeline interface {
	// Run the scheduling pipeline with the given request.
	Run(traceLog *slog.Logger, request Request) (*Result, error)
}

type pipeline struct {
	monitor Monitor
}

// Create a new scheduling pipeline.
func NewPipeline(monitor Monitor) Pipeline {
	return &pipeline{monitor: monitor}
}

// Where an already-placed operation ended up.
type placedOperation struct {
	end       time.Time
	machineID string
}

// The best placement found for an operation across all feasible machines.
type slotCandidate struct {
	machineID    string
	start        time.Time
	end          time.Time
	setupMinutes int
	runMinutes   int
}

func (p *pipeline) Run(traceLog *slog.Logger, request Request) (*Result, error) {
	if p.monitor.pipelineRunTimer != nil {
		timer := prometheus.NewTimer(p.monitor.pipelineRunTimer)
		defer timer.ObserveDuration()
	}
	if err := validateRequest(request); err != nil {
		return nil, err
	}
	policy := request.Policy.Normalize()
	rule, err := ParseRule(policy.Rule)
	if err != nil {
		// Unreachable, the rule was validated above.
		return nil, err
	}
	// The calendar was validated together with the request.
	cal, _ := newCalendarEngine(request.Calendar)

	now := time.Now().UTC()
	if request.StartTime != nil {
		now = request.StartTime.UTC()
	}
	horizon := time.Duration(policy.HorizonHours) * time.Hour
	horizonEnd := now.Add(horizon)
	transfer := time.Duration(policy.TransferMinutes) * time.Minute

	workOrders := make(map[string]shopfloor.WorkOrder, len(request.WorkOrders))
	for _, workOrder := range request.WorkOrders {
		workOrders[workOrder.ID] = workOrder
	}
	machines := make([]shopfloor.Machine, len(request.Machines))
	copy(machines, request.Machines)
	sort.Slice(machines, func(i, j int) bool { return machines[i].ID < machines[j].ID })
	capabilitiesByMachine := make(map[string][]shopfloor.MachineCapability)
	for _, capability := range request.Capabilities {
		capabilitiesByMachine[capability.MachineID] = append(
			capabilitiesByMachine[capability.MachineID], capability,
		)
	}
	for _, capabilities := range capabilitiesByMachine {
		sort.Slice(capabilities, func(i, j int) bool {
			return capabilities[i].ID < capabilities[j].ID
		})
	}
	matrix := newSetupMatrix(request.SetupMatrix)

	// Per-machine timelines seeded with the existing slots, kept sorted
	// by start time as new slots are placed.
	timelines := make(map[string][]shopfloor.ScheduleSlot)
	for _, slot := range request.ExistingSlots {
		if slot.Status == shopfloor.SlotStatusCancelled {
			continue
		}
		timelines[slot.MachineID] = append(timelines[slot.MachineID], slot)
	}
	for machineID := range timelines {
		sort.Slice(timelines[machineID], func(i, j int) bool {
			return timelines[machineID][i].Start.Before(timelines[machineID][j].Start)
		})
	}

	graph := newDependencyGraph(request.Operations)
	var conflicts []shopfloor.SchedulingConflict
	cycleMembers := make(map[string]bool)
	for _, cycle := range graph.cycles() {
		conflicts = append(conflicts, cycleConflict(cycle))
		for _, member := range cycle {
			cycleMembers[member] = true
		}
	}

	scheduledOps := make(map[string]placedOperation, len(request.Operations))
	lastOpOnMachine := make(map[string]shopfloor.Operation)
	dailyPlanned := make(map[string]map[string]int)

	var slots []shopfloor.ScheduleSlot
	for _, batch := range graph.batches() {
		scores := make(map[string]float64, len(batch))
		for _, opID := range batch {
			op := graph.ops[opID]
			scores[opID] = priorityScore(rule, op, workOrders[op.WorkOrderID], now)
		}
		sort.SliceStable(batch, func(i, j int) bool {
			if scores[batch[i]] != scores[batch[j]] {
				return scores[batch[i]] < scores[batch[j]]
			}
			return batch[i] < batch[j]
		})

		for _, opID := range batch {
			op := graph.ops[opID]
			workOrder := workOrders[op.WorkOrderID]

			// Predecessor-complete check. Cycle members tolerate their
			// unplaced cycle peers so they can still be placed best-effort
			// after the acyclic portion.
			earliestStart := now
			var missing []string
			for _, predID := range graph.predecessors(op.ID) {
				if placed, ok := scheduledOps[predID]; ok {
					if handoff := placed.end.Add(transfer); handoff.After(earliestStart) {
						earliestStart = handoff
					}
					continue
				}
				if cycleMembers[op.ID] && cycleMembers[predID] {
					continue
				}
				missing = append(missing, predID)
			}
			if len(missing) > 0 {
				traceLog.Info("scheduler: skipping operation, predecessors unplaced",
					"operation", op.ID, "missing", missing)
				conflicts = append(conflicts, unscheduledPredecessorConflict(op.ID, missing))
				continue
			}

			candidates := feasibleMachines(op, machines, capabilitiesByMachine)
			if len(candidates) == 0 {
				traceLog.Info("scheduler: no feasible machine", "operation", op.ID)
				conflicts = append(conflicts, noFeasibleMachineConflict(op))
				continue
			}

			// Evaluate every feasible machine and keep the earliest finish.
			// Candidates are sorted by machine id, so ties resolve to the
			// lexicographically smallest machine.
			var best *slotCandidate
			for _, candidate := range candidates {
				var prev *shopfloor.Operation
				if prevOp, ok := lastOpOnMachine[candidate.machine.ID]; ok {
					prev = &prevOp
				}
				setupMinutes := matrix.setupMinutes(prev, op, candidate.machine.Type)
				efficiency := clampEfficiency(
					nominalEfficiency(candidate.machine.Efficiency) *
						nominalEfficiency(candidate.capability.Efficiency),
				)
				runFloat := op.RunMinutesPerUnit * float64(workOrder.Quantity) / efficiency
				if !candidate.optimal {
					runFloat *= policy.NonOptimalRunFactor
				}
				runMinutes := int(math.Ceil(runFloat))
				duration := time.Duration(setupMinutes+runMinutes) * time.Minute

				start, ok := earliestAvailable(
					cal, timelines[candidate.machine.ID], duration, now, earliestStart, horizon,
				)
				if !ok {
					continue
				}
				end := start.Add(duration)
				if end.After(horizonEnd) {
					continue
				}
				if best == nil || end.Before(best.end) {
					best = &slotCandidate{
						machineID:    candidate.machine.ID,
						start:        start,
						end:          end,
						setupMinutes: setupMinutes,
						runMinutes:   runMinutes,
					}
				}
			}
			if best == nil {
				traceLog.Info("scheduler: no time within horizon", "operation", op.ID)
				conflicts = append(conflicts, noTimeWithinHorizonConflict(op.ID, policy.HorizonHours))
				continue
			}

			slot := shopfloor.ScheduleSlot{
				ID:            slotID(request.PlanID, op.ID),
				PlanID:        request.PlanID,
				WorkOrderID:   op.WorkOrderID,
				OperationID:   op.ID,
				MachineID:     best.machineID,
				Start:         best.start,
				End:           best.end,
				SetupMinutes:  best.setupMinutes,
				RunMinutes:    best.runMinutes,
				Quantity:      workOrder.Quantity,
				PriorityScore: finiteScore(scores[op.ID]),
				Rule:          string(rule),
				Status:        shopfloor.SlotStatusScheduled,
			}
			slots = append(slots, slot)
			timelines[best.machineID] = insertSorted(timelines[best.machineID], slot)
			lastOpOnMachine[best.machineID] = op
			scheduledOps[op.ID] = placedOperation{end: best.end, machineID: best.machineID}

			date := best.start.UTC().Format(time.DateOnly)
			if dailyPlanned[best.machineID] == nil {
				dailyPlanned[best.machineID] = make(map[string]int)
			}
			dailyPlanned[best.machineID][date] += best.setupMinutes + best.runMinutes
			if policy.AllowOverload {
				if available := cal.availableMinutesOn(best.start); available > 0 {
					utilization := float64(dailyPlanned[best.machineID][date]) / float64(available)
					if utilization > 1+policy.MaxOverloadPct/100 {
						conflicts = append(conflicts,
							capacityOverloadConflict(op.ID, best.machineID, date, utilization))
					}
				}
			}
			if op.DueDate != nil && best.end.After(op.DueDate.UTC()) {
				conflicts = append(conflicts, deadlineMissedConflict(op.ID))
			}
		}
	}

	buckets := buildCapacityBuckets(request.PlanID, slots, cal)
	p.monitor.observeRun(rule, len(request.Operations), len(slots), conflicts)
	traceLog.Info("scheduler: pipeline finished",
		"plan", request.PlanID, "slots", len(slots), "conflicts", len(conflicts))
	return &Result{Slots: slots, Buckets: buckets, Conflicts: conflicts}, nil
}

// Deterministic slot id derived from the plan and operation ids, so
// that identical inputs yield byte-identical output.
func slotID(planID, operationID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(planID+"/"+operationID)).String()
}

// Zero or negative efficiency values mean "not configured" and are
// treated as nominal.
func nominalEfficiency(efficiency float64) float64 {
	if efficiency <= 0 {
		return 1.0
	}
	return efficiency
}

// Dispatch scores can be +Inf (missing due dates); those must not leak
// into serialized slots.
func finiteScore(score float64) float64 {
	if math.IsInf(score, 1) {
		return math.MaxFloat64
	}
	return score
}

// Insert a slot into a timeline kept sorted by start time.
func insertSorted(timeline []shopfloor.ScheduleSlot, slot shopfloor.ScheduleSlot) []shopfloor.ScheduleSlot {
	at := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].Start.After(slot.Start)
	})
	timeline = append(timeline, shopfloor.ScheduleSlot{})
	copy(timeline[at+1:], timeline[at:])
	timeline[at] = slot
	return timeline
}
