package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// UK-wide threshold analysis: price-paid transactions above a threshold
// are matched to Westminster constituencies through the NSPL postcode
// lookup, then summarised per constituency together with the share of
// households a flat per-sale charge would touch.

// Transaction is one price-paid record (only the fields the analysis uses)
type Transaction struct {
	Price    float64
	Postcode string
}

// ThresholdStats summarises qualifying sales for one constituency
type ThresholdStats struct {
	Constituency           string
	NumSales               int
	MeanPrice              float64
	MedianPrice            float64
	TotalValue             float64
	EstimatedAnnualRevenue float64
	TotalHouseholds        float64
	PctHouseholdsAffected  float64
}

// LoadTransactions streams a Land Registry price-paid CSV (headerless,
// sixteen columns) keeping only rows at or above the threshold. Price is
// the second column, postcode the fourth.
func LoadTransactions(path string, threshold float64) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{
				What:     "Price-paid transaction data",
				Expected: []string{path},
			}
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var transactions []Transaction
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 4 {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || price < threshold {
			continue
		}
		transactions = append(transactions, Transaction{
			Price:    price,
			Postcode: strings.ToUpper(strings.TrimSpace(row[3])),
		})
	}

	return transactions, nil
}

// LoadPostcodeLookup reads the NSPL extract CSVs (data/NSPL/*.csv) and
// returns a postcode to Westminster constituency code mapping.
func LoadPostcodeLookup(dataDir string) (map[string]string, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "NSPL", "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &MissingInputError{
			What:     "NSPL postcode lookup",
			Expected: []string{filepath.Join(dataDir, "NSPL", "*.csv")},
		}
	}
	sort.Strings(files)

	lookup := make(map[string]string)
	for _, file := range files {
		if err := readPostcodeFile(file, lookup); err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
	}

	return lookup, nil
}

func readPostcodeFile(path string, lookup map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return err
	}

	pcdsCol, pconCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "pcds":
			pcdsCol = i
		case "pcon":
			pconCol = i
		}
	}
	if pcdsCol < 0 || pconCol < 0 {
		return fmt.Errorf("pcds/pcon columns not found")
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) <= pcdsCol || len(row) <= pconCol {
			continue
		}
		pcon := strings.TrimSpace(row[pconCol])
		if pcon == "" {
			continue
		}
		lookup[strings.ToUpper(strings.TrimSpace(row[pcdsCol]))] = pcon
	}
}

// LoadWestminsterNames reads the Westminster constituency code to name
// lookup (columns PCON24CD, PCON24NM).
func LoadWestminsterNames(dataDir string) (map[string]string, error) {
	path := filepath.Join(dataDir, "westminster_constituency_names.csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{
				What:     "Westminster constituency names",
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

	names := make(map[string]string, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		names[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}

	return names, nil
}

// AnalyzeThreshold aggregates qualifying transactions per constituency.
// Sales without a postcode match are dropped; constituencies missing from
// the household table get a zero affected share. Results are sorted by
// sales count descending.
func AnalyzeThreshold(transactions []Transaction, postcodeToConst, constNames map[string]string,
	households map[string]float64, perSaleCharge float64) []ThresholdStats {

	prices := make(map[string][]float64)
	for _, tx := range transactions {
		code, ok := postcodeToConst[tx.Postcode]
		if !ok {
			continue
		}
		name, ok := constNames[code]
		if !ok {
			continue
		}
		prices[name] = append(prices[name], tx.Price)
	}

	results := make([]ThresholdStats, 0, len(prices))
	for name, p := range prices {
		sort.Float64s(p)
		total := 0.0
		for _, v := range p {
			total += v
		}

		s := ThresholdStats{
			Constituency:           name,
			NumSales:               len(p),
			MeanPrice:              math.Round(stat.Mean(p, nil)),
			MedianPrice:            math.Round(stat.Quantile(0.5, stat.Empirical, p, nil)),
			TotalValue:             total,
			EstimatedAnnualRevenue: float64(len(p)) * perSaleCharge,
		}

		if hh, ok := households[name]; ok && hh > 0 {
			s.TotalHouseholds = hh
			s.PctHouseholdsAffected = math.Round(float64(len(p))/hh*100*1000) / 1000
		}

		results = append(results, s)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].NumSales != results[j].NumSales {
			return results[i].NumSales > results[j].NumSales
		}
		return results[i].Constituency < results[j].Constituency
	})

	return results
}

// thresholdLabel renders a threshold as a file-name fragment, e.g.
// 1500000 -> "1.5m", 2000000 -> "2m".
func thresholdLabel(threshold float64) string {
	millions := threshold / 1_000_000
	if millions == math.Trunc(millions) {
		return fmt.Sprintf("%.0fm", millions)
	}
	return fmt.Sprintf("%.1fm", millions)
}

// RunThresholdAnalysis runs the analysis for every configured threshold
// and writes the per-threshold impact and household CSVs into outDir.
func RunThresholdAnalysis(dataDir, outDir string, cfg *Config, verbose bool) error {
	if verbose {
		fmt.Println("Loading reference data...")
	}

	names, err := LoadWestminsterNames(dataDir)
	if err != nil {
		return err
	}
	postcodes, err := LoadPostcodeLookup(dataDir)
	if err != nil {
		return err
	}
	households, err := LoadHouseholds(dataDir)
	if err != nil {
		return err
	}

	ppFile := filepath.Join(dataDir, "pp-2024.csv")
	charge := cfg.Thresholds.GetPerSaleCharge()

	for _, threshold := range cfg.Thresholds.GetPrices() {
		label := thresholdLabel(threshold)
		if verbose {
			fmt.Printf("\nAnalyzing £%s threshold...\n", label)
		}

		transactions, err := LoadTransactions(ppFile, threshold)
		if err != nil {
			return err
		}

		results := AnalyzeThreshold(transactions, postcodes, names, households, charge)

		impactPath := filepath.Join(outDir, fmt.Sprintf("constituency_impact_%s.csv", label))
		if err := WriteThresholdCSV(impactPath, results); err != nil {
			return err
		}
		householdPath := filepath.Join(outDir, fmt.Sprintf("household_impact_%s.csv", label))
		if err := WriteHouseholdImpactCSV(householdPath, results, charge); err != nil {
			return err
		}

		if verbose {
			totalSales := 0
			for _, r := range results {
				totalSales += r.NumSales
			}
			fmt.Printf("  %d constituencies affected\n", len(results))
			fmt.Printf("  %d total sales\n", totalSales)
			fmt.Printf("  Saved: %s, %s\n", impactPath, householdPath)
		}
	}

	return nil
}
