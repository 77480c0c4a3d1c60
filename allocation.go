package main

import (
	"math"
	"sort"
)

// WeightingStrategy selects how constituencies share their council's sales
type WeightingStrategy string

const (
	// WeightingFixed gives every constituency in a council an equal share
	WeightingFixed WeightingStrategy = "fixed"
	// WeightingPopulation weights purely by population
	WeightingPopulation WeightingStrategy = "population"
	// WeightingWealth weights by population × wealth factor
	WeightingWealth WeightingStrategy = "wealth"
)

// Weighting source tags recorded on every output row
const (
	WealthSourceBandH      = "band_h"
	WealthSourceBandFH     = "band_fh"
	WealthSourceFallback   = "fallback_population_only"
	WealthSourcePopulation = "population_only"
	WealthSourceFixed      = "fixed_uniform"
)

// strategySourceTag returns the source tag for strategies that never
// consult wealth data. The wealth strategy's tag depends on which proxy
// actually loaded, so it is decided at load time instead.
func strategySourceTag(s WeightingStrategy) string {
	switch s {
	case WeightingFixed:
		return WealthSourceFixed
	case WeightingPopulation:
		return WealthSourcePopulation
	default:
		return WealthSourceFallback
	}
}

// ConstituencyWeight is one constituency's share of its council's sales
type ConstituencyWeight struct {
	Council      string
	Population   float64
	WealthFactor float64
	Weight       float64
}

// ConstituencyResult is one row of the constituency impact table
type ConstituencyResult struct {
	Constituency     string
	Council          string
	Population       float64
	WealthFactor     float64
	WealthDataSource string
	Weight           float64
	EstimatedSales   float64
	BandISales       float64
	BandJSales       float64
	SharePct         float64
	ImpliedFromSales float64 // Sales model: band sales × per-band surcharge
	AllocatedRevenue float64 // Stock model: share of stock × average rate
}

// AllocationInput carries everything the engine needs. The engine never
// mutates its input maps.
type AllocationInput struct {
	CouncilSales        map[string]float64
	ConstituencyCouncil map[string]string
	Population          map[string]float64
	WealthFactors       map[string]float64 // nil when the proxy source is unavailable
	WealthSource        string             // tag recorded on every row
	Strategy            WeightingStrategy
	DefaultPopulation   float64
	Levy                LevyConfig
	Warnf               func(format string, args ...interface{}) // optional, for missing-row warnings
}

// ComputeWeights calculates each constituency's share of its council's
// sales under the configured strategy.
//
//	Weight = adjusted / Σ adjusted within the council
//
// where adjusted is 1 (fixed), population (population), or
// population × wealth factor (wealth). A council whose total adjusted
// value is zero falls back to a uniform 1/n split.
func ComputeWeights(in AllocationInput) map[string]ConstituencyWeight {
	warnf := in.Warnf
	if warnf == nil {
		warnf = func(string, ...interface{}) {}
	}

	// Group constituencies by council with adjusted values
	type member struct {
		constituency string
		population   float64
		wealthFactor float64
		adjusted     float64
	}
	councils := make(map[string][]member)

	for constituency, council := range in.ConstituencyCouncil {
		pop, ok := in.Population[constituency]
		if !ok || pop <= 0 {
			pop = in.DefaultPopulation
			warnf("no population data for %s, using default %.0f", constituency, pop)
		}

		factor := 1.0
		if in.Strategy == WeightingWealth && in.WealthFactors != nil {
			if f, ok := in.WealthFactors[constituency]; ok && f > 0 {
				factor = f
			}
		}

		var adjusted float64
		switch in.Strategy {
		case WeightingFixed:
			adjusted = 1.0
		case WeightingPopulation:
			adjusted = pop
		default:
			adjusted = pop * factor
		}

		councils[council] = append(councils[council], member{constituency, pop, factor, adjusted})
	}

	weights := make(map[string]ConstituencyWeight, len(in.ConstituencyCouncil))
	for council, members := range councils {
		total := 0.0
		for _, m := range members {
			total += m.adjusted
		}
		for _, m := range members {
			w := 1.0 / float64(len(members))
			if total > 0 {
				w = m.adjusted / total
			}
			weights[m.constituency] = ConstituencyWeight{
				Council:      council,
				Population:   m.population,
				WealthFactor: m.wealthFactor,
				Weight:       w,
			}
		}
	}

	return weights
}

// Allocate distributes the council-level sales estimates to constituencies
// and derives per-constituency band splits, shares and revenue. It is a
// pure function of its input: calling it twice with the same input yields
// identical results, sorted by estimated sales descending.
func Allocate(in AllocationInput) []ConstituencyResult {
	weights := ComputeWeights(in)

	totalSales := 0.0
	for _, sales := range in.CouncilSales {
		totalSales += sales
	}

	bandIRatio := in.Levy.GetBandIRatio()
	bandJRatio := in.Levy.GetBandJRatio()
	totalStockRevenue := in.Levy.StockRevenue()

	results := make([]ConstituencyResult, 0, len(weights))
	for constituency, w := range weights {
		councilSales := in.CouncilSales[w.Council]
		sales := councilSales * w.Weight

		share := 0.0
		if totalSales > 0 {
			share = sales / totalSales
		}

		bandI := sales * bandIRatio
		bandJ := sales * bandJRatio
		impliedFromSales := bandI*in.Levy.GetBandISurcharge() + bandJ*in.Levy.GetBandJSurcharge()

		roundedSales := round1(sales)
		sharePct := round2(share * 100)
		if roundedSales <= 0 {
			sharePct = 0
			impliedFromSales = 0
		}

		results = append(results, ConstituencyResult{
			Constituency:     constituency,
			Council:          w.Council,
			Population:       w.Population,
			WealthFactor:     w.WealthFactor,
			WealthDataSource: in.WealthSource,
			Weight:           round4(w.Weight),
			EstimatedSales:   roundedSales,
			BandISales:       round1(bandI),
			BandJSales:       round1(bandJ),
			SharePct:         sharePct,
			ImpliedFromSales: math.Round(impliedFromSales),
			AllocatedRevenue: math.Round(sharePct / 100 * totalStockRevenue),
		})
	}

	// Sort by estimated sales descending; tie-break on name so output is
	// byte-identical across runs
	sort.Slice(results, func(i, j int) bool {
		if results[i].EstimatedSales != results[j].EstimatedSales {
			return results[i].EstimatedSales > results[j].EstimatedSales
		}
		return results[i].Constituency < results[j].Constituency
	})

	return results
}

// SummaryStats aggregates the headline figures from an allocation run
type SummaryStats struct {
	TotalConstituencies     int
	ConstituenciesWithSales int
	TotalSales              float64
	EstimatedStock          float64
	AverageRate             float64
	TotalRevenue            float64
	EdinburghRevenue        float64
	EdinburghSharePct       float64
	TopConstituency         string
	TopConstituencyRevenue  float64
}

// ComputeSummaryStats derives headline figures from the result table
func ComputeSummaryStats(results []ConstituencyResult, levy LevyConfig) SummaryStats {
	stats := SummaryStats{
		TotalConstituencies: len(results),
		EstimatedStock:      levy.GetStockEstimate(),
		AverageRate:         levy.AverageRate(),
	}

	for _, r := range results {
		stats.TotalSales += r.EstimatedSales
		stats.TotalRevenue += r.AllocatedRevenue
		if r.EstimatedSales > 0 {
			stats.ConstituenciesWithSales++
		}
		if r.Council == "City of Edinburgh" {
			stats.EdinburghRevenue += r.AllocatedRevenue
			stats.EdinburghSharePct += r.SharePct
		}
	}

	if len(results) > 0 {
		stats.TopConstituency = results[0].Constituency
		stats.TopConstituencyRevenue = results[0].AllocatedRevenue
	}

	return stats
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
