// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import "github.com/millwright-dev/millwright/internal/shopfloor"

// Inspection outcomes over the period, plus a Pareto ranking of the
// observed defect types.
type QualitySummary struct {
	TotalInspections int `json:"totalInspections"`
	PassCount        int `json:"passCount"`
	FailCount        int `json:"failCount"`
	ReworkCount      int `json:"reworkCount"`
	// All rates in percent.
	FirstPassYieldPct float64 `json:"firstPassYieldPercentage"`
	ScrapRatePct      float64 `json:"scrapRatePercentage"`
	ReworkRatePct     float64 `json:"reworkRatePercentage"`

	DefectPareto []ParetoEntry `json:"defectPareto"`
}

// Compute the quality summary from the inspection records in the period.
func ComputeQuality(input Input, period Period) QualitySummary {
	var summary QualitySummary
	defects := make(map[string]float64)
	for _, record := range input.QualityRecords {
		if !period.Contains(record.InspectedAt) {
			continue
		}
		summary.TotalInspections++
		switch record.Result {
		case shopfloor.QualityResultPass:
			summary.PassCount++
		case shopfloor.QualityResultFail:
			summary.FailCount++
		case shopfloor.QualityResultRework:
			summary.ReworkCount++
		}
		if record.Result != shopfloor.QualityResultPass && record.DefectType != "" {
			defects[record.DefectType]++
		}
	}
	total := float64(summary.TotalInspections)
	summary.FirstPassYieldPct = round2(safeDiv(float64(summary.PassCount), total) * 100)
	summary.ScrapRatePct = round2(safeDiv(float64(summary.FailCount), total) * 100)
	summary.ReworkRatePct = round2(safeDiv(float64(summary.ReworkCount), total) * 100)
	summary.DefectPareto = Pareto(defects)
	return summary
}
