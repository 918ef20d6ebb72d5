// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"time"

	"github.com/millwright-dev/millwright/internal/analytics"
)

// Append one observation record (production log, downtime event,
// quality record, or operator session). The observation tables are
// append-only; corrections are compensating records.
func (s Store) AppendObservation(record any) error {
	return s.DB.Insert(record)
}

// Load everything the analytics engine needs for the given period.
// The per-table period filters keep the result bounded; the engine
// filters precisely on its own.
func (s Store) LoadAnalyticsInput(from, to time.Time) (analytics.Input, error) {
	var input analytics.Input
	window := map[string]any{"from": from, "to": to}
	if _, err := s.DB.Select(&input.Machines, "SELECT * FROM machines"); err != nil {
		return input, err
	}
	if _, err := s.DB.Select(&input.WorkOrders, "SELECT * FROM work_orders"); err != nil {
		return input, err
	}
	_, err := s.DB.Select(&input.ProductionLogs,
		"SELECT * FROM production_logs WHERE timestamp >= :from AND timestamp < :to", window)
	if err != nil {
		return input, err
	}
	_, err = s.DB.Select(&input.DowntimeEvents,
		"SELECT * FROM downtime_events WHERE start_time >= :from AND start_time < :to", window)
	if err != nil {
		return input, err
	}
	_, err = s.DB.Select(&input.QualityRecords,
		"SELECT * FROM quality_records WHERE inspected_at >= :from AND inspected_at < :to", window)
	if err != nil {
		return input, err
	}
	_, err = s.DB.Select(&input.ScheduleSlots,
		"SELECT * FROM schedule_slots WHERE start_time >= :from AND start_time < :to", window)
	if err != nil {
		return input, err
	}
	_, err = s.DB.Select(&input.OperatorSessions,
		"SELECT * FROM operator_sessions WHERE start_time >= :from AND start_time < :to", window)
	return input, err
}
