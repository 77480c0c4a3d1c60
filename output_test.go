package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:        "£0",
		500:      "£500",
		1500:     "£2k",
		250000:   "£250k",
		1000000:  "£1.00M",
		18500000: "£18.50M",
	}
	for amount, want := range cases {
		if got := FormatMoney(amount); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", amount, got, want)
		}
	}
}

func TestFormatMoneyFull(t *testing.T) {
	if got := FormatMoneyFull(1607); got != "£1607" {
		t.Errorf("FormatMoneyFull(1607) = %q, want £1607", got)
	}
}

func TestFormatThousands(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		11481:    "11,481",
		1234567:  "1,234,567",
	}
	for v, want := range cases {
		if got := formatThousands(v); got != want {
			t.Errorf("formatThousands(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestWriteResults_ByteIdentical(t *testing.T) {
	// The full pipeline is deterministic: running the allocation twice
	// must produce byte-identical CSV output.
	var first, second bytes.Buffer

	if err := WriteResults(&first, Allocate(syntheticInput())); err != nil {
		t.Fatal(err)
	}
	if err := WriteResults(&second, Allocate(syntheticInput())); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical inputs produced different CSV bytes")
	}
	if first.Len() == 0 {
		t.Fatal("no CSV output written")
	}
}

func TestWriteResults_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, Allocate(twoSeatInput())); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	wantHeader := "constituency,council,population,wealth_factor,wealth_data_source," +
		"weight,estimated_sales,band_i_sales,band_j_sales,share_pct," +
		"implied_from_sales,allocated_revenue"
	if lines[0] != wantHeader {
		t.Errorf("header %q\nwant   %q", lines[0], wantHeader)
	}
	if !strings.HasPrefix(lines[1], "Testshire North,Testshire,100000,2,band_h,0.8,160,") {
		t.Errorf("unexpected first data row: %q", lines[1])
	}
}

func TestResultsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constituency_impact.csv")
	want := Allocate(twoSeatInput())

	if err := WriteResultsCSV(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadResultsCSV(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d rows, wrote %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: read %+v, wrote %+v", i, got[i], want[i])
		}
	}
}

func TestReadResultsCSV_Missing(t *testing.T) {
	_, err := ReadResultsCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "download -all") {
		t.Errorf("error lacks remediation hint: %v", err)
	}
}

func TestWriteThresholdCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impact.csv")
	results := []ThresholdStats{
		{Constituency: "Kensington", NumSales: 120, MeanPrice: 3200000, MedianPrice: 2500000,
			TotalValue: 384000000, EstimatedAnnualRevenue: 240000,
			TotalHouseholds: 60000, PctHouseholdsAffected: 0.2},
	}

	if err := WriteThresholdCSV(path, results); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data := string(raw)
	if !strings.Contains(data, "Kensington,120,3200000,2500000,384000000,240000") {
		t.Errorf("unexpected threshold CSV content:\n%s", data)
	}
}

func TestWriteHouseholdImpactCSV_SortsByShare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "households.csv")
	results := []ThresholdStats{
		{Constituency: "Low", NumSales: 50, TotalHouseholds: 100000, PctHouseholdsAffected: 0.05},
		{Constituency: "High", NumSales: 40, TotalHouseholds: 20000, PctHouseholdsAffected: 0.2},
	}

	if err := WriteHouseholdImpactCSV(path, results, 2000); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[1], "High,") || !strings.HasPrefix(lines[2], "Low,") {
		t.Errorf("rows not sorted by household share: %v", lines[1:])
	}
	// revenue column = sales × charge
	if !strings.HasSuffix(lines[1], ",80000") {
		t.Errorf("High row revenue wrong: %q", lines[1])
	}
}
