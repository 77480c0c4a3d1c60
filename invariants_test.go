package main

import (
	"math"
	"sort"
	"testing"
)

// Mathematical Invariants Test Suite
//
// Property-based tests that verify invariants of the allocation engine
// which must hold regardless of input values: weight normalisation,
// sales conservation, band-split consistency and share totals.

// syntheticInput builds an allocation input over the real geography with
// deterministic synthetic populations and wealth factors.
func syntheticInput() AllocationInput {
	names := make([]string, 0, len(ConstituencyCouncil))
	for constituency := range ConstituencyCouncil {
		names = append(names, constituency)
	}
	sort.Strings(names)

	population := make(map[string]float64, len(names))
	factors := make(map[string]float64, len(names))
	for i, constituency := range names {
		population[constituency] = 40000 + float64(i%17)*5000
		factors[constituency] = 0.5 + float64(i%7)*0.35
	}

	return AllocationInput{
		CouncilSales:        CouncilSales,
		ConstituencyCouncil: ConstituencyCouncil,
		Population:          population,
		WealthFactors:       factors,
		WealthSource:        WealthSourceBandH,
		Strategy:            WeightingWealth,
		DefaultPopulation:   75000,
		Levy:                DefaultLevyConfig(),
	}
}

// =============================================================================
// Weight Invariants
// =============================================================================

func TestInvariant_WeightsSumToOnePerCouncil(t *testing.T) {
	// Property: within each council, constituency weights sum to exactly 1

	for _, strategy := range []WeightingStrategy{WeightingFixed, WeightingPopulation, WeightingWealth} {
		in := syntheticInput()
		in.Strategy = strategy

		weights := ComputeWeights(in)

		totals := make(map[string]float64)
		for _, w := range weights {
			totals[w.Council] += w.Weight
		}

		for council, total := range totals {
			if math.Abs(total-1.0) > 1e-9 {
				t.Errorf("strategy %s: weights for %s sum to %.12f, want 1",
					strategy, council, total)
			}
		}
	}
}

func TestInvariant_WeightsInUnitInterval(t *testing.T) {
	// Property: every weight is strictly positive and at most 1

	weights := ComputeWeights(syntheticInput())
	for constituency, w := range weights {
		if w.Weight <= 0 || w.Weight > 1 {
			t.Errorf("%s has weight %.6f outside (0, 1]", constituency, w.Weight)
		}
	}
}

func TestInvariant_EveryConstituencyWeighted(t *testing.T) {
	// Property: every mapped constituency receives a weight, even with an
	// empty population table (default population fills the gap)

	in := syntheticInput()
	in.Population = map[string]float64{}

	weights := ComputeWeights(in)
	if len(weights) != ExpectedConstituencies {
		t.Fatalf("got %d weighted constituencies, want %d", len(weights), ExpectedConstituencies)
	}
}

// =============================================================================
// Sales Conservation Invariants
// =============================================================================

func TestInvariant_SalesConservedPerCouncil(t *testing.T) {
	// Property: allocated sales within a council sum back to the council's
	// reported count, to within rounding of each constituency row

	results := Allocate(syntheticInput())

	councilTotals := make(map[string]float64)
	councilRows := make(map[string]int)
	for _, r := range results {
		councilTotals[r.Council] += r.EstimatedSales
		councilRows[r.Council]++
	}

	for council, reported := range CouncilSales {
		allocated := councilTotals[council]
		tolerance := 0.05 * float64(councilRows[council]+1)
		if math.Abs(allocated-reported) > tolerance {
			t.Errorf("%s: allocated %.2f sales, council reported %.0f", council, allocated, reported)
		}
	}
}

func TestInvariant_NationalTotalConserved(t *testing.T) {
	// Property: the national allocated total matches the sum of council
	// counts, to within per-row rounding

	results := Allocate(syntheticInput())

	total := 0.0
	for _, r := range results {
		total += r.EstimatedSales
	}

	want := TotalCouncilSales()
	if math.Abs(total-want) > 0.05*float64(len(results)) {
		t.Errorf("allocated national total %.2f, want %.0f", total, want)
	}
}

func TestInvariant_ZeroSalesCouncilAllocatesZero(t *testing.T) {
	// Property: constituencies in councils with zero reported sales get
	// zero sales, zero share and zero revenue

	results := Allocate(syntheticInput())

	for _, r := range results {
		if CouncilSales[r.Council] != 0 {
			continue
		}
		if r.EstimatedSales != 0 || r.SharePct != 0 || r.AllocatedRevenue != 0 || r.ImpliedFromSales != 0 {
			t.Errorf("%s (council %s, zero sales): sales=%.1f share=%.2f revenue=%.0f implied=%.0f",
				r.Constituency, r.Council, r.EstimatedSales, r.SharePct,
				r.AllocatedRevenue, r.ImpliedFromSales)
		}
	}
}

// =============================================================================
// Band Split and Share Invariants
// =============================================================================

func TestInvariant_BandSplitSumsToSales(t *testing.T) {
	// Property: Band I + Band J sales equal the constituency's estimated
	// sales, to within the rounding of each band

	results := Allocate(syntheticInput())

	for _, r := range results {
		if math.Abs(r.BandISales+r.BandJSales-r.EstimatedSales) > 0.16 {
			t.Errorf("%s: band I %.1f + band J %.1f != sales %.1f",
				r.Constituency, r.BandISales, r.BandJSales, r.EstimatedSales)
		}
	}
}

func TestInvariant_BandRatioPreserved(t *testing.T) {
	// Property: band I is the larger band for every constituency with
	// sales, matching the 416:50 national split

	results := Allocate(syntheticInput())

	for _, r := range results {
		if r.EstimatedSales > 1 && r.BandISales <= r.BandJSales {
			t.Errorf("%s: band I %.1f should exceed band J %.1f",
				r.Constituency, r.BandISales, r.BandJSales)
		}
	}
}

func TestInvariant_NationalBandRatiosPreserved(t *testing.T) {
	// Property: summing each band nationally and dividing by total sales
	// recovers the configured band ratios

	levy := DefaultLevyConfig()
	results := Allocate(syntheticInput())

	var bandI, bandJ, sales float64
	for _, r := range results {
		bandI += r.BandISales
		bandJ += r.BandJSales
		sales += r.EstimatedSales
	}

	if math.Abs(bandI/sales-levy.GetBandIRatio()) > 0.01 {
		t.Errorf("national band I ratio %.4f, want %.4f", bandI/sales, levy.GetBandIRatio())
	}
	if math.Abs(bandJ/sales-levy.GetBandJRatio()) > 0.01 {
		t.Errorf("national band J ratio %.4f, want %.4f", bandJ/sales, levy.GetBandJRatio())
	}
}

func TestInvariant_SharesSumToHundred(t *testing.T) {
	// Property: share percentages across all constituencies sum to ~100

	results := Allocate(syntheticInput())

	total := 0.0
	for _, r := range results {
		total += r.SharePct
	}

	if math.Abs(total-100) > 0.1 {
		t.Errorf("shares sum to %.2f%%, want 100 ± 0.1", total)
	}
}

func TestInvariant_RevenueNonNegative(t *testing.T) {
	// Property: no revenue figure is ever negative

	results := Allocate(syntheticInput())

	for _, r := range results {
		if r.AllocatedRevenue < 0 || r.ImpliedFromSales < 0 {
			t.Errorf("%s: negative revenue (stock %.0f, sales %.0f)",
				r.Constituency, r.AllocatedRevenue, r.ImpliedFromSales)
		}
	}
}

func TestInvariant_TotalRevenueMatchesStockModel(t *testing.T) {
	// Property: summed allocated revenue approximates stock × average rate

	levy := DefaultLevyConfig()
	results := Allocate(syntheticInput())
	stats := ComputeSummaryStats(results, levy)

	want := levy.StockRevenue()
	// Each row rounds its share to 2dp, so allow 0.01% of total per row
	tolerance := want * 0.0001 * float64(len(results))
	if math.Abs(stats.TotalRevenue-want) > tolerance {
		t.Errorf("total revenue %.0f, stock model gives %.0f", stats.TotalRevenue, want)
	}
}

// =============================================================================
// Determinism Invariants
// =============================================================================

func TestInvariant_AllocationDeterministic(t *testing.T) {
	// Property: identical inputs produce identical ordered results

	a := Allocate(syntheticInput())
	b := Allocate(syntheticInput())

	if len(a) != len(b) {
		t.Fatalf("result lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestInvariant_ResultsSortedBySales(t *testing.T) {
	// Property: results are ordered by estimated sales descending, with
	// name as the tie-break

	results := Allocate(syntheticInput())

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if cur.EstimatedSales > prev.EstimatedSales {
			t.Errorf("row %d (%.1f) out of order after %.1f", i, cur.EstimatedSales, prev.EstimatedSales)
		}
		if cur.EstimatedSales == prev.EstimatedSales && cur.Constituency < prev.Constituency {
			t.Errorf("tie at %.1f sales broken wrongly: %s before %s",
				cur.EstimatedSales, prev.Constituency, cur.Constituency)
		}
	}
}
