package main

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// LevyConfig holds the surcharge rates, band distribution and stock
// estimate used for revenue calculations.
//
// Revenue (stock model):
//
//	Revenue = Stock × Average Rate
//	        = 11,481 × £1,607
//	        = £18.5m
//
// where Average Rate = (band_i_ratio × band_i_surcharge) +
// (band_j_ratio × band_j_surcharge). Sales counts are only used for
// geographic distribution, not for the headline revenue figure.
type LevyConfig struct {
	BandISurcharge float64 `yaml:"band_i_surcharge" json:"band_i_surcharge"` // £/year for £1m-£2m properties
	BandJSurcharge float64 `yaml:"band_j_surcharge" json:"band_j_surcharge"` // £/year for £2m+ properties
	BandIRatio     float64 `yaml:"band_i_ratio" json:"band_i_ratio"`         // Fraction of £1m+ stock in £1m-£2m
	BandJRatio     float64 `yaml:"band_j_ratio" json:"band_j_ratio"`         // Fraction of £1m+ stock in £2m+
	StockEstimate  float64 `yaml:"stock_estimate" json:"stock_estimate"`     // Total £1m+ dwellings in Scotland
}

// GetBandISurcharge returns the Band I surcharge, using the benchmark rate if not set
func (lc *LevyConfig) GetBandISurcharge() float64 {
	if lc.BandISurcharge <= 0 {
		return 1500.0 // UK Autumn Budget 2025 benchmark
	}
	return lc.BandISurcharge
}

// GetBandJSurcharge returns the Band J surcharge, using the benchmark rate if not set
func (lc *LevyConfig) GetBandJSurcharge() float64 {
	if lc.BandJSurcharge <= 0 {
		return 2500.0 // UK rate for the £2m-£2.5m band
	}
	return lc.BandJSurcharge
}

// GetBandIRatio returns the Band I share of £1m+ properties (Savills 2024: 416/466)
func (lc *LevyConfig) GetBandIRatio() float64 {
	if lc.BandIRatio <= 0 {
		return 416.0 / 466.0
	}
	return lc.BandIRatio
}

// GetBandJRatio returns the Band J share of £1m+ properties (Savills 2024: 50/466)
func (lc *LevyConfig) GetBandJRatio() float64 {
	if lc.BandJRatio <= 0 {
		return 50.0 / 466.0
	}
	return lc.BandJRatio
}

// GetStockEstimate returns the national £1m+ stock estimate
func (lc *LevyConfig) GetStockEstimate() float64 {
	if lc.StockEstimate <= 0 {
		return 11481.0 // Savills, February 2023
	}
	return lc.StockEstimate
}

// AverageRate returns the band-weighted average surcharge per property per year
func (lc *LevyConfig) AverageRate() float64 {
	return lc.GetBandIRatio()*lc.GetBandISurcharge() + lc.GetBandJRatio()*lc.GetBandJSurcharge()
}

// StockRevenue returns the total annual revenue under the stock model
func (lc *LevyConfig) StockRevenue() float64 {
	return lc.GetStockEstimate() * lc.AverageRate()
}

// DefaultLevyConfig returns the compiled-in levy parameters
func DefaultLevyConfig() LevyConfig {
	return LevyConfig{
		BandISurcharge: 1500.0,
		BandJSurcharge: 2500.0,
		BandIRatio:     416.0 / 466.0,
		BandJRatio:     50.0 / 466.0,
		StockEstimate:  11481.0,
	}
}

// WeightsConfig selects how council-level sales are distributed to
// constituencies, and which council tax band grouping backs the wealth
// proxy. The three strategies are the methodology revisions collapsed
// into one switch: uniform, population-only, and wealth-adjusted.
type WeightsConfig struct {
	Strategy          string  `yaml:"strategy" json:"strategy"`                     // "wealth", "population" or "fixed"
	WealthProxy       string  `yaml:"wealth_proxy" json:"wealth_proxy"`             // "band_h" or "band_fh"
	DefaultPopulation float64 `yaml:"default_population" json:"default_population"` // Substitute for missing population rows
}

// GetStrategy returns the weighting strategy, defaulting to wealth-adjusted
func (wc *WeightsConfig) GetStrategy() WeightingStrategy {
	switch wc.Strategy {
	case "population":
		return WeightingPopulation
	case "fixed":
		return WeightingFixed
	default:
		return WeightingWealth
	}
}

// GetWealthProxy returns the wealth proxy version, defaulting to Band H
func (wc *WeightsConfig) GetWealthProxy() string {
	if wc.WealthProxy == "band_fh" {
		return WealthSourceBandFH
	}
	return WealthSourceBandH
}

// GetDefaultPopulation returns the population substituted for missing rows
func (wc *WeightsConfig) GetDefaultPopulation() float64 {
	if wc.DefaultPopulation <= 0 {
		return 75000.0 // Roughly the mean constituency population
	}
	return wc.DefaultPopulation
}

// ThresholdsConfig holds parameters for the UK-wide price threshold analysis
type ThresholdsConfig struct {
	Prices        []float64 `yaml:"prices" json:"prices"`                   // Price thresholds in £
	PerSaleCharge float64   `yaml:"per_sale_charge" json:"per_sale_charge"` // Flat £/year charge per qualifying sale
}

// GetPrices returns the configured thresholds, defaulting to £1.5m and £2m
func (tc *ThresholdsConfig) GetPrices() []float64 {
	if len(tc.Prices) == 0 {
		return []float64{1_500_000, 2_000_000}
	}
	return tc.Prices
}

// GetPerSaleCharge returns the flat annual charge per qualifying sale
func (tc *ThresholdsConfig) GetPerSaleCharge() float64 {
	if tc.PerSaleCharge <= 0 {
		return 2000.0
	}
	return tc.PerSaleCharge
}

// Config holds the complete configuration
type Config struct {
	Levy       LevyConfig       `yaml:"levy" json:"levy"`
	Weights    WeightsConfig    `yaml:"weights" json:"weights"`
	Thresholds ThresholdsConfig `yaml:"thresholds" json:"thresholds"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadDefaultConfig loads the default configuration embedded in the binary
func LoadDefaultConfig() (*Config, error) {
	var config Config
	err := yaml.Unmarshal([]byte(defaultConfigYAML), &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigOrDefault loads the given config file when it exists, falling
// back to the embedded defaults otherwise
func LoadConfigOrDefault(filename string) (*Config, error) {
	if filename == "" {
		return LoadDefaultConfig()
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return LoadDefaultConfig()
	}
	return LoadConfig(filename)
}
