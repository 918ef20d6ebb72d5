// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses a "HH:MM" clock string into minutes after midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock string %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock string %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed clock string %q", clock)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock string %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// A single working shift. Start and End are clock times formatted as
// "HH:MM". A shift whose end is at or before its start is an overnight
// shift and rolls into the next calendar day. Break minutes reduce the
// available capacity of the shift but do not fragment it for placement.
type Shift struct {
	Name         string `json:"name" yaml:"name"`
	Start        string `json:"start" yaml:"start"`
	End          string `json:"end" yaml:"end"`
	BreakMinutes int    `json:"breakMinutes" yaml:"breakMinutes"`
}

// Working-time calendar of the shop floor. Weekday indices follow
// time.Weekday (0 = Sunday ... 6 = Saturday). Exceptions are
// non-working dates formatted as "2006-01-02".
type Calendar struct {
	Shifts      []Shift  `json:"shifts" yaml:"shifts"`
	WorkingDays []int    `json:"workingDays" yaml:"workingDays"`
	Exceptions  []string `json:"exceptions" yaml:"exceptions"`
}

// One sequence-dependent changeover entry: switching a machine of the
// given type from producing FromFamily to producing ToFamily takes
// ChangeoverMinutes. Absent entries fall back to the incoming
// operation's declared setup time.
type SetupMatrixEntry struct {
	FromFamily        string `json:"fromFamily" yaml:"fromFamily"`
	ToFamily          string `json:"toFamily" yaml:"toFamily"`
	MachineType       string `json:"machineType" yaml:"machineType"`
	ChangeoverMinutes int    `json:"changeoverMinutes" yaml:"changeoverMinutes"`
}
