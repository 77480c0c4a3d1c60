package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Wealth factors measure each constituency's concentration of high-value
// properties relative to the national average, and scale the
// population-based allocation weights.
//
// Two proxy versions exist, selected by weights.wealth_proxy:
//
//   - band_h: actual Council Tax Band H counts aggregated from Data Zone
//     level. Band H (>£212k in 1991, ~>£1.15m today) directly captures
//     £1m+ properties.
//   - band_fh: Bands F-H combined from a pre-aggregated constituency
//     table. Broader (includes £430k+ properties), which dilutes the
//     signal but needs no Data Zone join.

// dwellingCounts holds total and proxy-band dwelling counts for one unit
type dwellingCounts struct {
	Total float64
	Band  float64
}

// wealthFactorsFromCounts converts per-constituency dwelling counts into
// factors relative to the national proxy-band share, rounded to 2dp.
func wealthFactorsFromCounts(counts map[string]dwellingCounts) map[string]float64 {
	var nationalBand, nationalTotal float64
	for _, c := range counts {
		nationalBand += c.Band
		nationalTotal += c.Total
	}
	if nationalTotal == 0 || nationalBand == 0 {
		return nil
	}
	nationalShare := nationalBand / nationalTotal

	factors := make(map[string]float64, len(counts))
	for constituency, c := range counts {
		share := 0.0
		if c.Total > 0 {
			share = c.Band / c.Total
		}
		factors[constituency] = math.Round(share/nationalShare*100) / 100
	}

	return factors
}

// LoadWealthFactors loads wealth factors for the selected proxy version,
// downloading missing source files where possible. On any failure it
// returns (nil, WealthSourceFallback): the analysis then degrades to
// population-only weighting rather than aborting.
func LoadWealthFactors(dataDir, proxy string, verbose bool) (map[string]float64, string) {
	var factors map[string]float64
	var err error

	switch proxy {
	case WealthSourceBandFH:
		factors, err = loadBandFHFactors(dataDir)
	default:
		proxy = WealthSourceBandH
		factors, err = loadBandHFactors(dataDir, verbose)
	}

	if err != nil || len(factors) == 0 {
		if verbose {
			fmt.Println(strings.Repeat("=", 60))
			fmt.Println("WARNING: wealth proxy data unavailable!")
			if err != nil {
				fmt.Printf("   (%v)\n", err)
			}
			fmt.Println("   Results will use POPULATION-ONLY weights (less accurate).")
			fmt.Println(strings.Repeat("=", 60))
		}
		return nil, WealthSourceFallback
	}

	if verbose {
		printFactorExtremes(factors)
	}

	return factors, proxy
}

// loadBandHFactors computes factors from actual Band H counts: NRS
// dwelling estimates by Data Zone, joined to constituencies through the
// SSPL-derived lookup, then keyed by constituency name via the MapIt
// names table.
func loadBandHFactors(dataDir string, verbose bool) (map[string]float64, error) {
	dwellingFile := filepath.Join(dataDir, "dwelling_estimates_by_dz.xlsx")
	lookupFile := filepath.Join(dataDir, "dz_to_constituency_lookup.csv")

	if _, err := os.Stat(dwellingFile); os.IsNotExist(err) {
		if verbose {
			fmt.Println("   Dwelling estimates not found locally.")
		}
		if err := DownloadDwellingEstimates(dataDir, verbose); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(lookupFile); os.IsNotExist(err) {
		if verbose {
			fmt.Println("   Data Zone lookup not found locally.")
		}
		if err := DownloadDZLookup(dataDir, verbose); err != nil {
			return nil, err
		}
	}

	if verbose {
		fmt.Println("   Loading Band H data from NRS dwelling estimates...")
	}

	dzCounts, err := loadDataZoneCounts(dwellingFile)
	if err != nil {
		return nil, err
	}

	lookup, err := loadDZLookup(lookupFile)
	if err != nil {
		return nil, err
	}

	// Aggregate Data Zones to constituency level
	counts := make(map[string]dwellingCounts)
	for dz, c := range dzCounts {
		code, ok := lookup[dz]
		if !ok {
			continue
		}
		agg := counts[code]
		agg.Total += c.Total
		agg.Band += c.Band
		counts[code] = agg
	}

	if verbose {
		var band, total float64
		for _, c := range counts {
			band += c.Band
			total += c.Total
		}
		if total > 0 {
			fmt.Printf("   Scotland Band H: %.0f properties (%.2f%% of %.0f dwellings)\n",
				band, band/total*100, total)
		}
	}

	// The factors are keyed by GSS code at this point; the allocation
	// tables are name-keyed, so a usable names lookup is required
	names := LoadConstituencyNames(dataDir)
	if len(names) == 0 {
		if verbose {
			fmt.Println("   Constituency names not found locally.")
		}
		if err := DownloadConstituencyNames(dataDir, verbose); err != nil {
			return nil, err
		}
		names = LoadConstituencyNames(dataDir)
	}

	return keyFactorsByConstituencyName(wealthFactorsFromCounts(counts), names)
}

// keyFactorsByConstituencyName re-keys code-keyed factors by display name.
// Code-keyed factors never match the name-keyed geography tables, so an
// empty names lookup is an error rather than a silent pass-through.
func keyFactorsByConstituencyName(factors map[string]float64, names map[string]string) (map[string]float64, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("constituency names lookup unavailable, cannot key factors by name")
	}

	named := make(map[string]float64, len(factors))
	for code, factor := range factors {
		key := code
		if name, ok := names[code]; ok {
			key = name
		}
		named[key] = factor
	}

	return named, nil
}

// loadDataZoneCounts reads total and Band H dwelling counts per Data Zone
// from the NRS workbook (sheet "2023", four title rows before the header).
func loadDataZoneCounts(dwellingFile string) (map[string]dwellingCounts, error) {
	wb, err := excelize.OpenFile(dwellingFile)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows("2023")
	if err != nil {
		return nil, err
	}

	const headerRow = 4
	if len(rows) <= headerRow {
		return nil, fmt.Errorf("unexpected layout in %s", dwellingFile)
	}

	dzCol, totalCol, bandHCol := -1, -1, -1
	for i, header := range rows[headerRow] {
		h := strings.TrimSpace(strings.ReplaceAll(header, "\n", " "))
		switch h {
		case "Data Zone code":
			dzCol = i
		case "Total number of dwellings":
			totalCol = i
		case "Council Tax band: H":
			bandHCol = i
		}
	}
	if dzCol < 0 || totalCol < 0 || bandHCol < 0 {
		return nil, fmt.Errorf("unexpected columns in %s", dwellingFile)
	}

	counts := make(map[string]dwellingCounts)
	for _, row := range rows[headerRow+1:] {
		if len(row) <= totalCol || len(row) <= bandHCol || len(row) <= dzCol {
			continue
		}
		dz := strings.TrimSpace(row[dzCol])
		if dz == "" {
			continue
		}
		total := parseCount(row[totalCol])
		bandH := parseCount(row[bandHCol])
		counts[dz] = dwellingCounts{Total: total, Band: bandH}
	}

	return counts, nil
}

// loadDZLookup reads the DataZone to constituency-code lookup CSV
func loadDZLookup(lookupFile string) (map[string]string, error) {
	f, err := os.Open(lookupFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]string, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		lookup[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}

	return lookup, nil
}

// loadBandFHFactors computes factors from the pre-aggregated Band F-H
// constituency table (columns: constituency, total_dwellings, band_fh).
// This source is hand-maintained and has no download endpoint.
func loadBandFHFactors(dataDir string) (map[string]float64, error) {
	path := filepath.Join(dataDir, "council_tax_band_fh.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]dwellingCounts)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		counts[strings.TrimSpace(row[0])] = dwellingCounts{
			Total: parseCount(row[1]),
			Band:  parseCount(row[2]),
		}
	}

	return wealthFactorsFromCounts(counts), nil
}

// printFactorExtremes lists the most and least concentrated constituencies
func printFactorExtremes(factors map[string]float64) {
	type entry struct {
		name   string
		factor float64
	}
	sorted := make([]entry, 0, len(factors))
	for name, factor := range factors {
		sorted = append(sorted, entry{name, factor})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].factor != sorted[j].factor {
			return sorted[i].factor > sorted[j].factor
		}
		return sorted[i].name < sorted[j].name
	})

	fmt.Println("   Top 5 by high-value band concentration:")
	for i := 0; i < 5 && i < len(sorted); i++ {
		fmt.Printf("      %s: %.2fx\n", sorted[i].name, sorted[i].factor)
	}
	fmt.Println("   Bottom 3 by high-value band concentration:")
	for i := len(sorted) - 3; i < len(sorted); i++ {
		if i < 0 {
			continue
		}
		fmt.Printf("      %s: %.2fx\n", sorted[i].name, sorted[i].factor)
	}
}

// parseCount parses a numeric cell that may carry thousands separators
func parseCount(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
