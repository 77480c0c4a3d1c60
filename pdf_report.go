package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// pdfText converts UTF-8 text to PDF-safe encoding
// The £ sign in UTF-8 is 0xC2 0xA3, but PDF standard fonts expect Latin-1 (just 0xA3)
func pdfText(s string) string {
	return strings.ReplaceAll(s, "£", "\xa3")
}

// FormatMoneyPDF formats money for PDF output (handles £ encoding)
func FormatMoneyPDF(amount float64) string {
	return pdfText(FormatMoney(amount))
}

// GenerateImpactPDF writes a one-pass briefing PDF: headline figures,
// methodology notes and the top constituencies table.
func GenerateImpactPDF(path string, results []ConstituencyResult, stats SummaryStats, cfg *Config, wealthSource string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 30

	// Title
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(contentWidth, 12, "Scottish Mansion Tax", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(contentWidth, 8, "Estimated impact by Scottish Parliament constituency", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(contentWidth, 6,
		fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	// Headline figures
	pdf.SetFillColor(245, 247, 250)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentWidth, 8, "Headline Figures", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)

	headline := []string{
		fmt.Sprintf("£1m+ residential sales (2024): %.0f across %d council areas", stats.TotalSales, len(CouncilSales)),
		fmt.Sprintf("Estimated £1m+ stock: %s properties", formatThousands(stats.EstimatedStock)),
		fmt.Sprintf("Average annual surcharge: %s per property", FormatMoneyFull(stats.AverageRate)),
		fmt.Sprintf("Estimated annual revenue: %s", FormatMoney(stats.TotalRevenue)),
		fmt.Sprintf("Edinburgh constituencies: %s (%.1f%% of the Scotland total)",
			FormatMoney(stats.EdinburghRevenue), stats.EdinburghSharePct),
	}
	for i, line := range headline {
		border := "LR"
		if i == len(headline)-1 {
			border = "LRB"
		}
		pdf.CellFormat(contentWidth, 7, pdfText(line), border, 1, "L", true, 0, "")
	}
	pdf.Ln(8)

	// Methodology
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentWidth, 8, "Method", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	method := fmt.Sprintf(
		"Council-level £1m+ sales counts (Registers of Scotland) are distributed to the 73 "+
			"Scottish Parliament constituencies in proportion to population times a wealth factor "+
			"(%s weighting, proxy: %s). Sales are split into Band I (£1m-£2m, %s/year) and "+
			"Band J (£2m+, %s/year). Revenue figures apply each constituency's share of sales "+
			"to the estimated £1m+ stock at the average surcharge.",
		cfg.Weights.GetStrategy(), wealthSource,
		FormatMoneyFull(cfg.Levy.GetBandISurcharge()),
		FormatMoneyFull(cfg.Levy.GetBandJSurcharge()))
	pdf.MultiCell(contentWidth, 5, pdfText(method), "", "L", false)
	pdf.Ln(6)

	// Top constituencies table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentWidth, 8, "Top 10 Constituencies", "", 1, "L", false, 0, "")

	colWidths := []float64{62, 48, 22, 20, 28}
	headers := []string{"Constituency", "Council", "Sales", "Share", "Revenue"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 234, 240)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, r := range results {
		if i >= 10 {
			break
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 247, 250)
		pdf.CellFormat(colWidths[0], 6, pdfText(r.Constituency), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[1], 6, pdfText(r.Council), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[2], 6, fmt.Sprintf("%.1f", r.EstimatedSales), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[3], 6, fmt.Sprintf("%.2f%%", r.SharePct), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[4], 6, FormatMoneyPDF(r.AllocatedRevenue), "1", 0, "R", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(contentWidth, 4,
		pdfText("Estimates only. Constituency allocation is modelled from council-level data "+
			"and Council Tax band concentrations; actual £1m+ property locations are not published "+
			"at constituency level."), "", "L", false)

	return pdf.OutputFileAndClose(path)
}
