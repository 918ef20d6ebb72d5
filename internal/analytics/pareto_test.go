// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"fmt"
	"testing"
)

func TestPareto(t *testing.T) {
	entries := Pareto(map[string]float64{"scratch": 50, "crack": 30, "burr": 20})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	expected := []ParetoEntry{
		{Name: "scratch", Value: 50, Percentage: 50, CumulativePct: 50},
		{Name: "crack", Value: 30, Percentage: 30, CumulativePct: 80},
		{Name: "burr", Value: 20, Percentage: 20, CumulativePct: 100},
	}
	for i, entry := range entries {
		if entry != expected[i] {
			t.Errorf("entry %d = %+v, expected %+v", i, entry, expected[i])
		}
	}
}

func TestPareto_TopNCutoff(t *testing.T) {
	// Twelve defect types; only the ten largest survive, and the
	// cumulative percentage stays relative to the full total.
	values := make(map[string]float64, 12)
	for i := 1; i <= 12; i++ {
		values[fmt.Sprintf("defect-%02d", i)] = float64(i)
	}
	entries := Pareto(values)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Name != "defect-12" || entries[0].Value != 12 {
		t.Errorf("top entry = %+v, expected defect-12", entries[0])
	}
	previous := 0.0
	for _, entry := range entries {
		if entry.CumulativePct < previous {
			t.Errorf("cumulative percentage decreased at %s", entry.Name)
		}
		previous = entry.CumulativePct
	}
	// Total is 78, the kept ten sum to 75.
	if last := entries[9].CumulativePct; last != 96.15 {
		t.Errorf("final cumulative percentage = %f, expected 96.15", last)
	}
}

func TestPareto_Ties(t *testing.T) {
	entries := Pareto(map[string]float64{"warp": 5, "dent": 5, "chip": 5})
	if entries[0].Name != "chip" || entries[1].Name != "dent" || entries[2].Name != "warp" {
		t.Errorf("tie order = %s, %s, %s, expected alphabetical",
			entries[0].Name, entries[1].Name, entries[2].Name)
	}
}

func TestPareto_Empty(t *testing.T) {
	if entries := Pareto(nil); entries != nil {
		t.Errorf("expected nil, got %+v", entries)
	}
}
