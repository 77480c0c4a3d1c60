package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const version = "1.2.0"

func usage() {
	fmt.Fprintf(os.Stderr, `Scottish Mansion Tax Impact Estimator

Estimates the fiscal impact of an annual surcharge on £1m+ residential
properties across the 73 Scottish Parliament constituencies. Council-level
sales counts from Registers of Scotland are distributed to constituencies
by population weighted with a Council Tax Band H concentration factor.

COMMANDS:
  download     Fetch the reference data files (NRS dwelling estimates,
               SSPL Data Zone lookup, MapIt constituency names)
  analyze      Run the constituency allocation and write the impact CSV
  thresholds   UK-wide analysis of £1.5m/£2m price thresholds from
               Land Registry price-paid data
  visualize    Render interactive HTML charts from a previous analysis
  report       Generate a PDF briefing from a previous analysis
  run          download + analyze + visualize in one pass
  version      Print the version

Usage:
  %s <command> [options]

Examples:
  %s download -all             Fetch everything that can be downloaded
  %s analyze                   Run the allocation with default settings
  %s analyze -o out -q         Write CSVs to out/ without console output
  %s analyze -config my.yaml   Use custom surcharges and weighting
  %s thresholds                Per-constituency £1.5m/£2m threshold tables
  %s visualize -i out/constituency_impact.csv
  %s run                       Full pipeline

Data files live in ./data (created on first use). Population data must be
provided manually: constituency_population.csv or the NRS workbook
nrs_constituency_population.xlsx.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "download":
		err = cmdDownload(os.Args[2:])
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "thresholds":
		err = cmdThresholds(os.Args[2:])
	case "visualize":
		err = cmdVisualize(os.Args[2:])
	case "report":
		err = cmdReport(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "version":
		fmt.Printf("%s %s\n", filepath.Base(os.Args[0]), version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var missing *MissingInputError
		if errors.As(err, &missing) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func cmdDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	all := fs.Bool("all", false, "Download every available reference file")
	dataDir := fs.String("data-dir", "", "Data directory (default: ./data)")
	quiet := fs.Bool("q", false, "Suppress progress output")
	fs.Parse(args)

	dir := *dataDir
	if dir == "" {
		dir = GetDataDir()
	}
	verbose := !*quiet

	if *all {
		return DownloadAll(dir, verbose)
	}

	// Without -all, fetch only the small files
	if err := DownloadConstituencyNames(dir, verbose); err != nil {
		return err
	}
	fmt.Println("Use 'download -all' to also fetch the dwelling estimates and postcode lookup.")
	return nil
}

// loadAnalysisConfig loads the YAML config, falling back to the embedded
// defaults when no file is given.
func loadAnalysisConfig(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	return LoadConfigOrDefault("config.yaml")
}

// runAllocation wires the data loads into the engine and returns the
// sorted result table.
func runAllocation(dataDir string, cfg *Config, verbose bool) ([]ConstituencyResult, string, error) {
	if err := ValidateGeography(); err != nil {
		return nil, "", err
	}

	population, err := LoadPopulation(dataDir, verbose)
	if err != nil {
		return nil, "", err
	}

	strategy := cfg.Weights.GetStrategy()
	var factors map[string]float64
	wealthSource := strategySourceTag(strategy)
	if strategy == WeightingWealth {
		factors, wealthSource = LoadWealthFactors(dataDir, cfg.Weights.GetWealthProxy(), verbose)
	}

	warnf := func(string, ...interface{}) {}
	if verbose {
		warnf = func(format string, args ...interface{}) {
			fmt.Printf("   WARNING: "+format+"\n", args...)
		}
	}

	results := Allocate(AllocationInput{
		CouncilSales:        CouncilSales,
		ConstituencyCouncil: ConstituencyCouncil,
		Population:          population,
		WealthFactors:       factors,
		WealthSource:        wealthSource,
		Strategy:            strategy,
		DefaultPopulation:   cfg.Weights.GetDefaultPopulation(),
		Levy:                cfg.Levy,
		Warnf:               warnf,
	})

	return results, wealthSource, nil
}

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	outDir := fs.String("o", ".", "Output directory for CSV files")
	dataDir := fs.String("data-dir", "", "Data directory (default: ./data)")
	configFile := fs.String("config", "", "Path to YAML configuration file")
	quiet := fs.Bool("q", false, "Suppress console output")
	fs.Parse(args)

	cfg, err := loadAnalysisConfig(*configFile)
	if err != nil {
		return err
	}

	dir := *dataDir
	if dir == "" {
		dir = GetDataDir()
	}
	verbose := !*quiet

	if verbose {
		// Header prints before the load so warnings appear under it
		PrintAnalysisHeader(cfg, cfg.Weights.GetWealthProxy())
	}

	results, wealthSource, err := runAllocation(dir, cfg, verbose)
	if err != nil {
		return err
	}
	stats := ComputeSummaryStats(results, cfg.Levy)

	if verbose {
		if wealthSource == WealthSourceFallback && cfg.Weights.GetStrategy() == WeightingWealth {
			fmt.Println()
		}
		PrintResults(results, stats)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	outPath := filepath.Join(*outDir, "constituency_impact.csv")
	if err := WriteResultsCSV(outPath, results); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Saved: %s\n", outPath)
	}
	return nil
}

func cmdThresholds(args []string) error {
	fs := flag.NewFlagSet("thresholds", flag.ExitOnError)
	outDir := fs.String("o", ".", "Output directory for CSV files")
	dataDir := fs.String("data-dir", "", "Data directory (default: ./data)")
	configFile := fs.String("config", "", "Path to YAML configuration file")
	quiet := fs.Bool("q", false, "Suppress console output")
	fs.Parse(args)

	cfg, err := loadAnalysisConfig(*configFile)
	if err != nil {
		return err
	}

	dir := *dataDir
	if dir == "" {
		dir = GetDataDir()
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}

	return RunThresholdAnalysis(dir, *outDir, cfg, !*quiet)
}

func cmdVisualize(args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ExitOnError)
	input := fs.String("i", "constituency_impact.csv", "Constituency impact CSV from a previous analyze run")
	outDir := fs.String("o", ".", "Output directory for HTML files")
	quiet := fs.Bool("q", false, "Suppress console output")
	fs.Parse(args)

	results, err := ReadResultsCSV(*input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	return GenerateCharts(results, *outDir, !*quiet)
}

func cmdReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	input := fs.String("i", "constituency_impact.csv", "Constituency impact CSV from a previous analyze run")
	output := fs.String("o", "mansion_tax_impact.pdf", "Output PDF path")
	configFile := fs.String("config", "", "Path to YAML configuration file")
	quiet := fs.Bool("q", false, "Suppress console output")
	fs.Parse(args)

	cfg, err := loadAnalysisConfig(*configFile)
	if err != nil {
		return err
	}

	results, err := ReadResultsCSV(*input)
	if err != nil {
		return err
	}

	wealthSource := WealthSourceFallback
	if len(results) > 0 {
		wealthSource = results[0].WealthDataSource
	}

	stats := ComputeSummaryStats(results, cfg.Levy)
	if err := GenerateImpactPDF(*output, results, stats, cfg, wealthSource); err != nil {
		return err
	}
	if !*quiet {
		fmt.Printf("Saved: %s\n", *output)
	}
	return nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	outDir := fs.String("o", ".", "Output directory")
	dataDir := fs.String("data-dir", "", "Data directory (default: ./data)")
	configFile := fs.String("config", "", "Path to YAML configuration file")
	quiet := fs.Bool("q", false, "Suppress console output")
	fs.Parse(args)

	cfg, err := loadAnalysisConfig(*configFile)
	if err != nil {
		return err
	}

	dir := *dataDir
	if dir == "" {
		dir = GetDataDir()
	}
	verbose := !*quiet

	if err := DownloadAll(dir, verbose); err != nil {
		return err
	}

	if verbose {
		PrintAnalysisHeader(cfg, cfg.Weights.GetWealthProxy())
	}

	results, wealthSource, err := runAllocation(dir, cfg, verbose)
	if err != nil {
		return err
	}
	stats := ComputeSummaryStats(results, cfg.Levy)

	if verbose {
		PrintResults(results, stats)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}

	outPath := filepath.Join(*outDir, "constituency_impact.csv")
	if err := WriteResultsCSV(outPath, results); err != nil {
		return err
	}
	if err := GenerateCharts(results, *outDir, verbose); err != nil {
		return err
	}
	pdfPath := filepath.Join(*outDir, "mansion_tax_impact.pdf")
	if err := GenerateImpactPDF(pdfPath, results, stats, cfg, wealthSource); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Saved: %s\n", outPath)
		fmt.Printf("Saved: %s\n", pdfPath)
	}
	return nil
}
