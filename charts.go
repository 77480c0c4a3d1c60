package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Interactive HTML charts of the allocation results, rendered with
// go-echarts. Each chart is a standalone file; the dashboard stitches
// the individual charts into one page.

const chartTopN = 20

// revenueBarChart plots the top constituencies by allocated annual revenue
func revenueBarChart(results []ConstituencyResult) *charts.Bar {
	n := chartTopN
	if len(results) < n {
		n = len(results)
	}

	// Reverse so the largest bar ends up at the top of the horizontal axis
	names := make([]string, 0, n)
	values := make([]opts.BarData, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := results[i]
		names = append(names, r.Constituency)
		values = append(values, opts.BarData{Value: r.AllocatedRevenue})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Mansion Tax Revenue by Constituency",
			Width:     "1100px",
			Height:    "720px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Estimated annual revenue, top %d constituencies", n),
			Subtitle: "Stock model: share of £1m+ stock × average surcharge",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithGridOpts(opts.Grid{Left: "280px"}),
	)
	bar.SetXAxis(names).
		AddSeries("revenue (£/year)", values,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
		)
	bar.XYReversal()

	return bar
}

// councilSharePieChart plots each council's share of total £1m+ sales
func councilSharePieChart(results []ConstituencyResult) *charts.Pie {
	councilSales := make(map[string]float64)
	for _, r := range results {
		councilSales[r.Council] += r.EstimatedSales
	}

	type slice struct {
		name  string
		sales float64
	}
	slices := make([]slice, 0, len(councilSales))
	for name, sales := range councilSales {
		if sales > 0 {
			slices = append(slices, slice{name, sales})
		}
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].sales != slices[j].sales {
			return slices[i].sales > slices[j].sales
		}
		return slices[i].name < slices[j].name
	})

	data := make([]opts.PieData, 0, len(slices))
	for _, s := range slices {
		data = append(data, opts.PieData{Name: s.name, Value: s.sales})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "£1m+ Sales by Council",
			Width:     "1100px",
			Height:    "720px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "£1m+ residential sales by council area",
			Subtitle: "Registers of Scotland, 2024",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("sales", data,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {d}%",
		}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"30%", "65%"}}),
	)

	return pie
}

// renderToFile renders a single chart to an HTML file
func renderToFile(path string, render func(w *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// GenerateCharts writes the individual chart files and the combined
// dashboard into outDir.
func GenerateCharts(results []ConstituencyResult, outDir string, verbose bool) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}

	bar := revenueBarChart(results)
	pie := councilSharePieChart(results)

	barPath := filepath.Join(outDir, "revenue_by_constituency.html")
	if err := renderToFile(barPath, func(w *bytes.Buffer) error { return bar.Render(w) }); err != nil {
		return err
	}

	piePath := filepath.Join(outDir, "council_share.html")
	if err := renderToFile(piePath, func(w *bytes.Buffer) error { return pie.Render(w) }); err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = "Scottish Mansion Tax - Constituency Impact"
	page.AddCharts(bar, pie)

	dashPath := filepath.Join(outDir, "dashboard.html")
	if err := renderToFile(dashPath, func(w *bytes.Buffer) error { return page.Render(w) }); err != nil {
		return err
	}

	if verbose {
		fmt.Println("Charts written:")
		fmt.Printf("  %s\n", barPath)
		fmt.Printf("  %s\n", piePath)
		fmt.Printf("  %s\n", dashPath)
	}
	return nil
}
