package main

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writePricePaidFixture writes a headerless Land Registry style CSV with
// only the price and postcode columns populated.
func writePricePaidFixture(t *testing.T, dir string, rows [][2]string) string {
	t.Helper()
	path := filepath.Join(dir, "pp-2024.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for _, r := range rows {
		record := make([]string, 16)
		record[0] = "{GUID}"
		record[1] = r[0] // price
		record[2] = "2024-06-01 00:00"
		record[3] = r[1] // postcode
		if err := w.Write(record); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestLoadTransactions(t *testing.T) {
	path := writePricePaidFixture(t, t.TempDir(), [][2]string{
		{"2500000", "SW7 1AA"},
		{"1600000", "w8 4bb"}, // postcodes normalise to upper case
		{"1499999", "N1 1AA"}, // below threshold
		{"900000", "E1 1AA"},
	})

	transactions, err := LoadTransactions(path, 1_500_000)
	if err != nil {
		t.Fatal(err)
	}

	if len(transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(transactions))
	}
	if transactions[0].Price != 2500000 || transactions[0].Postcode != "SW7 1AA" {
		t.Errorf("first transaction %+v", transactions[0])
	}
	if transactions[1].Postcode != "W8 4BB" {
		t.Errorf("postcode not upper-cased: %q", transactions[1].Postcode)
	}
}

func TestLoadTransactions_Missing(t *testing.T) {
	_, err := LoadTransactions(filepath.Join(t.TempDir(), "pp-2024.csv"), 1_500_000)
	var missing *MissingInputError
	if err == nil {
		t.Fatal("expected error for missing price-paid file")
	}
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingInputError, got %T: %v", err, err)
	}
}

func TestAnalyzeThreshold(t *testing.T) {
	transactions := []Transaction{
		{Price: 2000000, Postcode: "SW7 1AA"},
		{Price: 3000000, Postcode: "SW7 1AB"},
		{Price: 4000000, Postcode: "SW7 1AC"},
		{Price: 1600000, Postcode: "W8 4BB"},
		{Price: 1800000, Postcode: "ZZ9 9ZZ"}, // no postcode match, dropped
	}
	postcodes := map[string]string{
		"SW7 1AA": "E14000999",
		"SW7 1AB": "E14000999",
		"SW7 1AC": "E14000999",
		"W8 4BB":  "E14000998",
	}
	names := map[string]string{
		"E14000999": "Kensington",
		"E14000998": "Westminster",
	}
	households := map[string]float64{
		"Kensington": 60000,
	}

	results := AnalyzeThreshold(transactions, postcodes, names, households, 2000)

	if len(results) != 2 {
		t.Fatalf("got %d constituencies, want 2", len(results))
	}

	// Sorted by sales count descending
	k := results[0]
	if k.Constituency != "Kensington" || k.NumSales != 3 {
		t.Fatalf("first row %+v, want Kensington with 3 sales", k)
	}
	if k.MeanPrice != 3000000 {
		t.Errorf("mean price %.0f, want 3000000", k.MeanPrice)
	}
	if k.MedianPrice != 3000000 {
		t.Errorf("median price %.0f, want 3000000", k.MedianPrice)
	}
	if k.TotalValue != 9000000 {
		t.Errorf("total value %.0f, want 9000000", k.TotalValue)
	}
	if k.EstimatedAnnualRevenue != 6000 {
		t.Errorf("revenue %.0f, want 6000", k.EstimatedAnnualRevenue)
	}
	if k.PctHouseholdsAffected != 0.005 {
		t.Errorf("pct households %.4f, want 0.005", k.PctHouseholdsAffected)
	}

	// Westminster has no household row: share stays zero
	w := results[1]
	if w.Constituency != "Westminster" || w.NumSales != 1 {
		t.Fatalf("second row %+v, want Westminster with 1 sale", w)
	}
	if w.TotalHouseholds != 0 || w.PctHouseholdsAffected != 0 {
		t.Errorf("Westminster household fields %+v, want zero", w)
	}
}

func TestLoadPostcodeLookup(t *testing.T) {
	dir := t.TempDir()
	nsplDir := filepath.Join(dir, "NSPL")
	if err := os.MkdirAll(nsplDir, 0755); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(filepath.Join(nsplDir, "NSPL_SW.csv"))
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	rows := [][]string{
		{"pcd", "pcds", "pcon", "laua"},
		{"SW71AA", "SW7 1AA", "E14000999", "E09000020"},
		{"SW71AB", "SW7 1AB", "", "E09000020"}, // unmapped, skipped
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	f.Close()

	lookup, err := LoadPostcodeLookup(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(lookup) != 1 {
		t.Fatalf("got %d postcodes, want 1", len(lookup))
	}
	if lookup["SW7 1AA"] != "E14000999" {
		t.Errorf("SW7 1AA -> %q, want E14000999", lookup["SW7 1AA"])
	}
}

func TestLoadPostcodeLookup_MissingDir(t *testing.T) {
	_, err := LoadPostcodeLookup(t.TempDir())
	if err == nil {
		t.Fatal("expected error when NSPL extract is absent")
	}
}

func TestThresholdLabel(t *testing.T) {
	cases := map[float64]string{
		1_500_000: "1.5m",
		2_000_000: "2m",
		1_000_000: "1m",
		2_500_000: "2.5m",
	}
	for threshold, want := range cases {
		if got := thresholdLabel(threshold); got != want {
			t.Errorf("thresholdLabel(%v) = %q, want %q", threshold, got, want)
		}
	}
}
