package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MissingInputError reports a required reference file that could not be
// found, along with every path that was tried and how to fix it.
type MissingInputError struct {
	What     string
	Expected []string
}

func (e *MissingInputError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s not found. Expected one of:\n", e.What)
	for _, path := range e.Expected {
		fmt.Fprintf(&b, "  - %s\n", path)
	}
	b.WriteString("\nRun 'goMansionTax download -all' to download required data.")
	return b.String()
}

// GetDataDir returns the data directory, creating it if necessary.
//
// Searches in order:
//  1. ./data (relative to current working directory)
//  2. data/ next to the executable
func GetDataDir() string {
	cwdData := "data"
	if info, err := os.Stat(cwdData); err == nil && info.IsDir() {
		return cwdData
	}

	if exe, err := os.Executable(); err == nil {
		exeData := filepath.Join(filepath.Dir(exe), "data")
		if info, err := os.Stat(exeData); err == nil && info.IsDir() {
			return exeData
		}
	}

	_ = os.MkdirAll(cwdData, 0755)
	return cwdData
}

// LoadPopulation loads the NRS constituency population table. When only
// the NRS Excel workbook is present, the Persons totals are extracted
// from it and cached as CSV for subsequent runs.
func LoadPopulation(dataDir string, verbose bool) (map[string]float64, error) {
	popFile := filepath.Join(dataDir, "constituency_population.csv")
	xlsxFile := filepath.Join(dataDir, "nrs_constituency_population.xlsx")

	if _, err := os.Stat(popFile); os.IsNotExist(err) {
		if verbose {
			fmt.Println("   Population CSV not found. Checking for Excel source...")
		}
		if _, err := os.Stat(xlsxFile); err != nil {
			return nil, &MissingInputError{
				What:     "Population data",
				Expected: []string{popFile, xlsxFile},
			}
		}
		if verbose {
			fmt.Println("   Extracting from NRS Excel file...")
		}
		if err := extractPopulationFromExcel(xlsxFile, popFile); err != nil {
			return nil, fmt.Errorf("extracting population data: %w", err)
		}
	}

	f, err := os.Open(popFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", popFile, err)
	}

	population := make(map[string]float64)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header
		}
		pop, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue
		}
		population[strings.TrimSpace(row[0])] = pop
	}

	if len(population) == 0 {
		return nil, fmt.Errorf("no population rows parsed from %s", popFile)
	}

	return population, nil
}

// extractPopulationFromExcel pulls the Persons totals out of the NRS
// workbook (sheet "2021", two header rows, columns: constituency, code,
// sex, total, per-age counts) and writes the constituency/population CSV.
func extractPopulationFromExcel(xlsxFile, popFile string) error {
	wb, err := excelize.OpenFile(xlsxFile)
	if err != nil {
		return err
	}
	defer wb.Close()

	rows, err := wb.GetRows("2021")
	if err != nil {
		return err
	}

	out, err := os.Create(popFile)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write([]string{"constituency", "population"}); err != nil {
		return err
	}

	count := 0
	for i, row := range rows {
		if i < 3 || len(row) < 4 {
			continue // title and header rows
		}
		if strings.TrimSpace(row[2]) != "Persons" {
			continue
		}
		total := strings.ReplaceAll(strings.TrimSpace(row[3]), ",", "")
		if _, err := strconv.ParseFloat(total, 64); err != nil {
			continue
		}
		if err := writer.Write([]string{strings.TrimSpace(row[0]), total}); err != nil {
			return err
		}
		count++
	}

	if count == 0 {
		return fmt.Errorf("no Persons rows found in %s", xlsxFile)
	}

	return nil
}

// LoadConstituencyNames loads the GSS code to name lookup. The lookup is
// display-only, so a missing file just yields an empty map.
func LoadConstituencyNames(dataDir string) map[string]string {
	names := make(map[string]string)

	f, err := os.Open(filepath.Join(dataDir, "constituency_names.csv"))
	if err != nil {
		return names
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return names
	}

	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		names[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}

	return names
}

// LoadHouseholds loads Census 2021 household counts per Westminster
// constituency from the TS003 workbook, summing observations across
// household-composition categories.
func LoadHouseholds(dataDir string) (map[string]float64, error) {
	path := filepath.Join(dataDir, "TS003_household_composition.xlsx")
	wb, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{
				What:     "Household counts",
				Expected: []string{path},
			}
		}
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows("Dataset")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty Dataset sheet in %s", path)
	}

	nameCol, compCol, obsCol := -1, -1, -1
	for i, header := range rows[0] {
		h := strings.TrimSpace(header)
		switch {
		case strings.Contains(h, "constituencies") && !strings.Contains(h, "Code"):
			nameCol = i
		case strings.Contains(h, "Household composition"):
			compCol = i
		case h == "Observation":
			obsCol = i
		}
	}
	if nameCol < 0 || compCol < 0 || obsCol < 0 {
		return nil, fmt.Errorf("unexpected columns in %s", path)
	}

	households := make(map[string]float64)
	for _, row := range rows[1:] {
		if len(row) <= obsCol || len(row) <= nameCol || len(row) <= compCol {
			continue
		}
		if strings.TrimSpace(row[compCol]) == "Does not apply" {
			continue
		}
		obs, err := strconv.ParseFloat(strings.TrimSpace(row[obsCol]), 64)
		if err != nil {
			continue
		}
		households[strings.TrimSpace(row[nameCol])] += obs
	}

	return households, nil
}
