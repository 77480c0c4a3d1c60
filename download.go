package main

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Reference data sources. The NRS files carry the Band H counts and the
// Data Zone to constituency mapping; MapIt provides display names.
const (
	nrsDwellingURL = "https://www.nrscotland.gov.uk/media/bhjk5m00/dwelling-est-by-2011-dz-05-24.xlsx"
	ssplURL        = "https://www.nrscotland.gov.uk/media/rpvjxnpv/sspl-2025-2.zip"
	mapitSPCURL    = "https://mapit.mysociety.org/areas/SPC"

	downloadUserAgent = "scotland-mansion-tax/1.0"
)

// fetch downloads a URL with the given timeout and returns the body
func fetch(url string, timeout time.Duration, accept string) ([]byte, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", downloadUserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// DownloadDwellingEstimates downloads the NRS dwelling estimates by Data
// Zone (~16 MB), the source of Council Tax Band A-H counts for each of
// Scotland's ~7,000 Data Zones.
func DownloadDwellingEstimates(dataDir string, verbose bool) error {
	outputFile := filepath.Join(dataDir, "dwelling_estimates_by_dz.xlsx")

	if verbose {
		fmt.Println("   Downloading NRS dwelling estimates (~16 MB)...")
	}

	data, err := fetch(nrsDwellingURL, 120*time.Second, "")
	if err != nil {
		if verbose {
			fmt.Printf("   Download failed: %v\n", err)
		}
		return err
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("   Downloaded dwelling estimates (%.1f MB)\n", float64(len(data))/1e6)
	}
	return nil
}

// DownloadDZLookup downloads the Scottish Statistics Postcode Lookup and
// extracts the unique Data Zone to Scottish Parliament constituency
// mapping from its singlerecord.csv.
func DownloadDZLookup(dataDir string, verbose bool) error {
	lookupFile := filepath.Join(dataDir, "dz_to_constituency_lookup.csv")

	if verbose {
		fmt.Println("   Downloading SSPL postcode lookup (~95 MB compressed)...")
	}

	data, err := fetch(ssplURL, 180*time.Second, "")
	if err != nil {
		if verbose {
			fmt.Printf("   Download failed: %v\n", err)
		}
		return err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	var record *zip.File
	for _, f := range zr.File {
		if filepath.Base(f.Name) == "singlerecord.csv" {
			record = f
			break
		}
	}
	if record == nil {
		return fmt.Errorf("singlerecord.csv not found in SSPL archive")
	}

	rc, err := record.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	pairs, err := extractDZPairs(rc)
	if err != nil {
		return err
	}

	if err := writeDZLookup(lookupFile, pairs); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("   Extracted %d Data Zone -> Constituency mappings\n", len(pairs))
	}
	return nil
}

// extractDZPairs streams the SSPL single-record CSV and returns the
// unique, non-empty DataZone/constituency-code pairs.
func extractDZPairs(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	dzCol, constCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "DataZone2011Code":
			dzCol = i
		case "ScottishParliamentaryConstituency2021Code":
			constCol = i
		}
	}
	if dzCol < 0 || constCol < 0 {
		return nil, fmt.Errorf("expected columns missing from SSPL singlerecord.csv")
	}

	pairs := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= dzCol || len(row) <= constCol {
			continue
		}
		dz := strings.TrimSpace(row[dzCol])
		code := strings.TrimSpace(row[constCol])
		if dz == "" || code == "" {
			continue
		}
		pairs[dz] = code
	}

	return pairs, nil
}

// writeDZLookup writes the lookup pairs as a sorted two-column CSV
func writeDZLookup(path string, pairs map[string]string) error {
	zones := make([]string, 0, len(pairs))
	for dz := range pairs {
		zones = append(zones, dz)
	}
	sort.Strings(zones)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"DataZone", "ConstituencyCode"}); err != nil {
		return err
	}
	for _, dz := range zones {
		if err := writer.Write([]string{dz, pairs[dz]}); err != nil {
			return err
		}
	}

	return writer.Error()
}

// DownloadConstituencyNames downloads the GSS code to name mapping for
// Scottish Parliament constituencies from the MapIt API.
func DownloadConstituencyNames(dataDir string, verbose bool) error {
	namesFile := filepath.Join(dataDir, "constituency_names.csv")

	if verbose {
		fmt.Println("   Downloading constituency names from MapIt...")
	}

	data, err := fetch(mapitSPCURL, 30*time.Second, "application/json")
	if err != nil {
		if verbose {
			fmt.Printf("   Download failed: %v\n", err)
		}
		return err
	}

	var areas map[string]struct {
		Name  string            `json:"name"`
		Codes map[string]string `json:"codes"`
	}
	if err := json.Unmarshal(data, &areas); err != nil {
		return err
	}

	type nameRow struct{ code, name string }
	var rows []nameRow
	for _, info := range areas {
		code := info.Codes["gss"]
		if strings.HasPrefix(code, "S16") {
			rows = append(rows, nameRow{code, info.Name})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].code < rows[j].code })

	f, err := os.Create(namesFile)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"Code", "Name"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.code, row.name}); err != nil {
			return err
		}
	}
	if err := writer.Error(); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("   Downloaded %d constituency names\n", len(rows))
	}
	return nil
}

// DownloadAll fetches every downloadable reference file that is not
// already present and reports the ones that must be obtained manually.
// It returns an error when a required input is still missing afterwards.
func DownloadAll(dataDir string, verbose bool) error {
	if verbose {
		fmt.Println("Downloading required data files...")
		fmt.Println()
	}

	var missing []string

	steps := []struct {
		label    string
		file     string
		download func() error
		required bool
	}{
		{
			label:    "1. NRS Dwelling Estimates (Band H data by Data Zone):",
			file:     "dwelling_estimates_by_dz.xlsx",
			download: func() error { return DownloadDwellingEstimates(dataDir, verbose) },
		},
		{
			label:    "2. Data Zone to Constituency lookup (SSPL):",
			file:     "dz_to_constituency_lookup.csv",
			download: func() error { return DownloadDZLookup(dataDir, verbose) },
		},
		{
			label:    "3. Constituency names (MapIt):",
			file:     "constituency_names.csv",
			download: func() error { return DownloadConstituencyNames(dataDir, verbose) },
		},
		{
			label:    "4. Population data (NRS):",
			file:     "constituency_population.csv",
			required: true,
		},
	}

	for _, step := range steps {
		if verbose {
			fmt.Println(step.label)
		}
		path := filepath.Join(dataDir, step.file)
		if _, err := os.Stat(path); err == nil {
			if verbose {
				fmt.Println("   Already present")
				fmt.Println()
			}
			continue
		}
		if step.download != nil {
			if err := step.download(); err != nil && step.required {
				missing = append(missing, path)
			}
		} else {
			if verbose {
				fmt.Println("   Not found - include in repo or download manually from NRS")
			}
			// The Excel source also satisfies the population requirement
			xlsx := filepath.Join(dataDir, "nrs_constituency_population.xlsx")
			if _, err := os.Stat(xlsx); err != nil {
				missing = append(missing, path)
			}
		}
		if verbose {
			fmt.Println()
		}
	}

	if len(missing) > 0 {
		return &MissingInputError{What: "Required data", Expected: missing}
	}
	return nil
}
