// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import "sort"

// Pareto rankings are cut off after this many entries.
const paretoTopN = 10

// One entry of a Pareto ranking.
type ParetoEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Share of the total, in percent. The cumulative percentage is
	// monotonically non-decreasing over the ranking.
	Percentage    float64 `json:"percentage"`
	CumulativePct float64 `json:"cumulativePercentage"`
}

// Pareto ranks the values descending, keeps the top 10 and annotates
// each entry with its share and cumulative share of the full total.
// Ties rank alphabetically for a stable output.
func Pareto(values map[string]float64) []ParetoEntry {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	var total float64
	for name, value := range values {
		names = append(names, name)
		total += value
	}
	sort.Slice(names, func(i, j int) bool {
		if values[names[i]] != values[names[j]] {
			return values[names[i]] > values[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > paretoTopN {
		names = names[:paretoTopN]
	}

	entries := make([]ParetoEntry, 0, len(names))
	var cumulative float64
	for _, name := range names {
		percentage := safeDiv(values[name], total) * 100
		cumulative += percentage
		entries = append(entries, ParetoEntry{
			Name:          name,
			Value:         values[name],
			Percentage:    round2(percentage),
			CumulativePct: round2(cumulative),
		})
	}
	return entries
}
