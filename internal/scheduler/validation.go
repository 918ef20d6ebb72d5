// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"errors"
	"fmt"
)

// Validate the scheduling request. Validation errors abort the run
// before any placement is attempted and surface to the caller verbatim;
// everything that can be tolerated is reported as a conflict instead.
func validateRequest(request Request) error {
	var errs []error
	if len(request.Operations) == 0 {
		errs = append(errs, errors.New("no operations to schedule"))
	}
	if len(request.Machines) == 0 {
		errs = append(errs, errors.New("no machines available"))
	}
	if len(request.Calendar.Shifts) == 0 {
		errs = append(errs, errors.New("calendar defines no shifts"))
	}
	policy := request.Policy.Normalize()
	if _, err := ParseRule(policy.Rule); err != nil {
		errs = append(errs, err)
	}
	if policy.HorizonHours <= 0 {
		errs = append(errs, fmt.Errorf("non-positive horizon %d", policy.HorizonHours))
	}
	if policy.MaxOverloadPct < 0 {
		errs = append(errs, fmt.Errorf("negative max overload percentage %f", policy.MaxOverloadPct))
	}

	workOrderIDs := make(map[string]bool, len(request.WorkOrders))
	for _, workOrder := range request.WorkOrders {
		workOrderIDs[workOrder.ID] = true
	}
	for _, op := range request.Operations {
		if !workOrderIDs[op.WorkOrderID] {
			errs = append(errs, fmt.Errorf(
				"operation %s references unknown work order %s", op.ID, op.WorkOrderID,
			))
		}
	}
	machineIDs := make(map[string]bool, len(request.Machines))
	for _, machine := range request.Machines {
		machineIDs[machine.ID] = true
	}
	for _, capability := range request.Capabilities {
		if !machineIDs[capability.MachineID] {
			errs = append(errs, fmt.Errorf(
				"capability %s references unknown machine %s", capability.ID, capability.MachineID,
			))
		}
	}
	if _, err := newCalendarEngine(request.Calendar); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
