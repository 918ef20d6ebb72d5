// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Dispatch rules accepted in scheduler policies.
var knownRules = map[string]bool{
	"edd": true, "spt": true, "cr": true, "fifo": true, "priority": true,
}

// Check if the configuration is valid. Invalid configurations abort
// service startup, before any scheduling is attempted.
func (c *config) Validate() error {
	var errs []error
	policy := c.SchedulerConfig.DefaultPolicy
	if policy.Rule != "" && !knownRules[strings.ToLower(policy.Rule)] {
		errs = append(errs, fmt.Errorf("unknown dispatch rule %q", policy.Rule))
	}
	if policy.HorizonHours < 0 {
		errs = append(errs, fmt.Errorf("non-positive horizon %d", policy.HorizonHours))
	}
	if policy.MaxOverloadPct < 0 {
		errs = append(errs, fmt.Errorf("negative max overload percentage %f", policy.MaxOverloadPct))
	}
	for _, shift := range c.ShopFloorConfig.Calendar.Shifts {
		if _, err := shopfloor.ParseClock(shift.Start); err != nil {
			errs = append(errs, fmt.Errorf("shift %q: %w", shift.Name, err))
		}
		if _, err := shopfloor.ParseClock(shift.End); err != nil {
			errs = append(errs, fmt.Errorf("shift %q: %w", shift.Name, err))
		}
	}
	for _, day := range c.ShopFloorConfig.Calendar.WorkingDays {
		if day < 0 || day > 6 {
			errs = append(errs, fmt.Errorf("working day index %d out of range", day))
		}
	}
	for _, entry := range c.ShopFloorConfig.SetupMatrix {
		if entry.ChangeoverMinutes < 0 {
			errs = append(errs, fmt.Errorf(
				"negative changeover minutes for (%s, %s, %s)",
				entry.FromFamily, entry.ToFamily, entry.MachineType,
			))
		}
	}
	return errors.Join(errs...)
}
