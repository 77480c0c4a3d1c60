package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// FormatMoney formats a float as a currency string
func FormatMoney(amount float64) string {
	if amount >= 1000000 {
		return fmt.Sprintf("£%.2fM", amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("£%.0fk", amount/1000)
	}
	return fmt.Sprintf("£%.0f", amount)
}

// FormatMoneyFull formats a float as full currency (no abbreviation)
func FormatMoneyFull(amount float64) string {
	return fmt.Sprintf("£%.0f", amount)
}

// formatFloat renders a float compactly for CSV output. The shortest
// representation keeps output files byte-identical between runs.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintAnalysisHeader prints the run header with the key assumptions
func PrintAnalysisHeader(cfg *Config, wealthSource string) {
	fmt.Println("╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Println("║           SCOTTISH MANSION TAX - CONSTITUENCY IMPACT ESTIMATE                ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Assumptions:")
	fmt.Println("────────────")
	fmt.Printf("  £1m+ sales (RoS 2024):    %.0f across %d councils\n",
		TotalCouncilSales(), len(CouncilSales))
	fmt.Printf("  £1m+ stock estimate:      %s properties\n",
		formatThousands(cfg.Levy.GetStockEstimate()))
	fmt.Printf("  Band I surcharge:         %s/year (£1m - £2m)\n",
		FormatMoneyFull(cfg.Levy.GetBandISurcharge()))
	fmt.Printf("  Band J surcharge:         %s/year (£2m+)\n",
		FormatMoneyFull(cfg.Levy.GetBandJSurcharge()))
	fmt.Printf("  Average rate:             %s/property\n",
		FormatMoneyFull(cfg.Levy.AverageRate()))
	fmt.Printf("  Weighting:                %s", cfg.Weights.GetStrategy())
	if cfg.Weights.GetStrategy() == WeightingWealth {
		fmt.Printf(" (proxy: %s)", wealthSource)
	}
	fmt.Println()
	fmt.Println()
}

// PrintResults prints the top constituencies table and headline figures
func PrintResults(results []ConstituencyResult, stats SummaryStats) {
	fmt.Println("Top 10 constituencies by estimated £1m+ sales:")
	fmt.Println(strings.Repeat("─", 100))
	fmt.Printf("%-42s %-22s │ %8s │ %7s │ %12s\n",
		"Constituency", "Council", "Sales", "Share", "Revenue")
	fmt.Println(strings.Repeat("─", 100))

	for i, r := range results {
		if i >= 10 {
			break
		}
		fmt.Printf("%-42s %-22s │ %8.1f │ %6.2f%% │ %12s\n",
			r.Constituency, r.Council, r.EstimatedSales, r.SharePct,
			FormatMoney(r.AllocatedRevenue))
	}
	fmt.Println(strings.Repeat("─", 100))

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Constituencies:           %d (%d with estimated sales)\n",
		stats.TotalConstituencies, stats.ConstituenciesWithSales)
	fmt.Printf("  Total £1m+ sales:         %.0f\n", stats.TotalSales)
	fmt.Println()
	fmt.Println("Revenue (stock model):")
	fmt.Printf("  %s properties × %s average = %s/year\n",
		formatThousands(stats.EstimatedStock),
		FormatMoneyFull(stats.AverageRate),
		FormatMoney(stats.TotalRevenue))
	fmt.Println()
	fmt.Printf("  Edinburgh constituencies: %s (%.1f%% of Scotland)\n",
		FormatMoney(stats.EdinburghRevenue), stats.EdinburghSharePct)
	fmt.Printf("  Largest single share:     %s (%s)\n",
		stats.TopConstituency, FormatMoney(stats.TopConstituencyRevenue))
	fmt.Println()
}

// formatThousands renders a count with thousands separators
func formatThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// resultHeader is the column order of the constituency impact CSV
var resultHeader = []string{
	"constituency",
	"council",
	"population",
	"wealth_factor",
	"wealth_data_source",
	"weight",
	"estimated_sales",
	"band_i_sales",
	"band_j_sales",
	"share_pct",
	"implied_from_sales",
	"allocated_revenue",
}

// WriteResults writes the constituency impact table as CSV. Writing to an
// io.Writer keeps the function testable for byte-identical output.
func WriteResults(w io.Writer, results []ConstituencyResult) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(resultHeader); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Constituency,
			r.Council,
			formatFloat(r.Population),
			formatFloat(r.WealthFactor),
			r.WealthDataSource,
			formatFloat(r.Weight),
			formatFloat(r.EstimatedSales),
			formatFloat(r.BandISales),
			formatFloat(r.BandJSales),
			formatFloat(r.SharePct),
			formatFloat(r.ImpliedFromSales),
			formatFloat(r.AllocatedRevenue),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteResultsCSV writes the constituency impact table to a file
func WriteResultsCSV(path string, results []ConstituencyResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteResults(f, results)
}

// ReadResultsCSV reads a previously written constituency impact table,
// for rendering charts without re-running the analysis.
func ReadResultsCSV(path string) ([]ConstituencyResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{
				What:     "Constituency impact table",
				Expected: []string{path},
			}
		}
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no result rows in %s", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range resultHeader {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("column %q missing from %s", required, path)
		}
	}

	num := func(row []string, name string) float64 {
		v, _ := strconv.ParseFloat(row[col[name]], 64)
		return v
	}

	results := make([]ConstituencyResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(resultHeader) {
			continue
		}
		results = append(results, ConstituencyResult{
			Constituency:     row[col["constituency"]],
			Council:          row[col["council"]],
			Population:       num(row, "population"),
			WealthFactor:     num(row, "wealth_factor"),
			WealthDataSource: row[col["wealth_data_source"]],
			Weight:           num(row, "weight"),
			EstimatedSales:   num(row, "estimated_sales"),
			BandISales:       num(row, "band_i_sales"),
			BandJSales:       num(row, "band_j_sales"),
			SharePct:         num(row, "share_pct"),
			ImpliedFromSales: num(row, "implied_from_sales"),
			AllocatedRevenue: num(row, "allocated_revenue"),
		})
	}

	return results, nil
}

// WriteThresholdCSV writes the per-threshold constituency impact table
func WriteThresholdCSV(path string, results []ThresholdStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"constituency",
		"num_sales",
		"mean_price",
		"median_price",
		"total_value",
		"estimated_annual_revenue",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Constituency,
			strconv.Itoa(r.NumSales),
			formatFloat(r.MeanPrice),
			formatFloat(r.MedianPrice),
			formatFloat(r.TotalValue),
			formatFloat(r.EstimatedAnnualRevenue),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteHouseholdImpactCSV writes the share of households a flat per-sale
// charge would touch, sorted by that share descending.
func WriteHouseholdImpactCSV(path string, results []ThresholdStats, perSaleCharge float64) error {
	sorted := make([]ThresholdStats, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PctHouseholdsAffected != sorted[j].PctHouseholdsAffected {
			return sorted[i].PctHouseholdsAffected > sorted[j].PctHouseholdsAffected
		}
		return sorted[i].Constituency < sorted[j].Constituency
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"constituency",
		"num_sales",
		"total_households",
		"pct_households_affected",
		"estimated_annual_revenue",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range sorted {
		row := []string{
			r.Constituency,
			strconv.Itoa(r.NumSales),
			formatFloat(r.TotalHouseholds),
			formatFloat(r.PctHouseholdsAffected),
			formatFloat(float64(r.NumSales) * perSaleCharge),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
