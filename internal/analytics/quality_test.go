// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"testing"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

func TestComputeQuality(t *testing.T) {
	records := []shopfloor.QualityRecord{
		{ID: "q1", Result: shopfloor.QualityResultFail, DefectType: "crack"},
		{ID: "q2", Result: shopfloor.QualityResultFail, DefectType: "crack"},
		{ID: "q3", Result: shopfloor.QualityResultFail, DefectType: "burr"},
		{ID: "q4", Result: shopfloor.QualityResultRework, DefectType: "burr"},
	}
	for i := 0; i < 6; i++ {
		records = append(records, shopfloor.QualityRecord{Result: shopfloor.QualityResultPass})
	}
	for i := range records {
		records[i].InspectedAt = clock(10, 0)
	}
	// Outside the period: ignored.
	records = append(records, shopfloor.QualityRecord{
		Result: shopfloor.QualityResultFail, InspectedAt: clock(10, 0).AddDate(0, 0, 1),
	})

	summary := ComputeQuality(Input{QualityRecords: records}, shift)
	if summary.TotalInspections != 10 {
		t.Fatalf("total inspections = %d, expected 10", summary.TotalInspections)
	}
	if summary.PassCount != 6 || summary.FailCount != 3 || summary.ReworkCount != 1 {
		t.Errorf("counts = %d/%d/%d, expected 6/3/1",
			summary.PassCount, summary.FailCount, summary.ReworkCount)
	}
	if summary.FirstPassYieldPct != 60 {
		t.Errorf("first pass yield = %f, expected 60", summary.FirstPassYieldPct)
	}
	if summary.ScrapRatePct != 30 {
		t.Errorf("scrap rate = %f, expected 30", summary.ScrapRatePct)
	}
	if summary.ReworkRatePct != 10 {
		t.Errorf("rework rate = %f, expected 10", summary.ReworkRatePct)
	}

	// burr and crack tie at 2 defects each; ties rank alphabetically.
	if len(summary.DefectPareto) != 2 {
		t.Fatalf("expected 2 pareto entries, got %d", len(summary.DefectPareto))
	}
	if summary.DefectPareto[0].Name != "burr" || summary.DefectPareto[1].Name != "crack" {
		t.Errorf("pareto order = %s, %s, expected burr, crack",
			summary.DefectPareto[0].Name, summary.DefectPareto[1].Name)
	}
	if summary.DefectPareto[0].Percentage != 50 || summary.DefectPareto[1].CumulativePct != 100 {
		t.Errorf("pareto shares = %+v", summary.DefectPareto)
	}
}

func TestComputeQuality_UntypedDefects(t *testing.T) {
	// Failures without a defect type count in the rates but not in the
	// Pareto ranking.
	input := Input{QualityRecords: []shopfloor.QualityRecord{
		{ID: "q1", Result: shopfloor.QualityResultFail, InspectedAt: clock(10, 0)},
	}}
	summary := ComputeQuality(input, shift)
	if summary.FailCount != 1 {
		t.Errorf("fail count = %d, expected 1", summary.FailCount)
	}
	if len(summary.DefectPareto) != 0 {
		t.Errorf("expected no pareto entries, got %+v", summary.DefectPareto)
	}
}
