package main

import "testing"

func TestGeographyValid(t *testing.T) {
	if err := ValidateGeography(); err != nil {
		t.Fatalf("geography tables inconsistent: %v", err)
	}
}

func TestGeographyCardinality(t *testing.T) {
	if len(ConstituencyCouncil) != ExpectedConstituencies {
		t.Errorf("%d constituencies mapped, want %d", len(ConstituencyCouncil), ExpectedConstituencies)
	}
	if len(CouncilSales) != 32 {
		t.Errorf("%d councils with sales counts, want 32", len(CouncilSales))
	}
}

func TestGeographySalesTotal(t *testing.T) {
	// The per-council estimates sum above the official RoS figure because
	// hotspot counts are rounded up; they must stay in the same ballpark.
	total := TotalCouncilSales()
	if total != 429 {
		t.Errorf("council sales sum to %.0f, want 429", total)
	}
	if total < RoSReportedTotal || total > RoSReportedTotal*1.2 {
		t.Errorf("council total %.0f too far from RoS reference %d", total, RoSReportedTotal)
	}
}

func TestGeographyEveryMappedCouncilHasSalesRow(t *testing.T) {
	for constituency, council := range ConstituencyCouncil {
		if _, ok := CouncilSales[council]; !ok {
			t.Errorf("%s maps to council %q with no sales count", constituency, council)
		}
	}
}

func TestGeographyEdinburghSeats(t *testing.T) {
	// City of Edinburgh holds six constituencies, the largest single
	// council grouping alongside Glasgow
	count := 0
	for _, council := range ConstituencyCouncil {
		if council == "City of Edinburgh" {
			count++
		}
	}
	if count != 6 {
		t.Errorf("%d Edinburgh constituencies, want 6", count)
	}
}
