package infrastructure

import (
	"bytes"
	"fmt"
	"strconv"

	"adsboard/internal/domain"

	"github.com/go-pdf/fpdf"
)

// FPDFRenderer implements domain.PDFRenderer: a one-page summary with the
// window totals and the reconciled daily breakdown.
type FPDFRenderer struct{}

// NewFPDFRenderer creates a PDF renderer.
func NewFPDFRenderer() *FPDFRenderer { return &FPDFRenderer{} }

func (r *FPDFRenderer) Render(title string, report domain.ReconciledReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	rangeLine := fmt.Sprintf("Date range: %s to %s", report.StartDate, report.EndDate)
	if report.DatePreset != "" && report.DatePreset != "custom" {
		rangeLine = fmt.Sprintf("Date range: %s (%s to %s)", report.DatePreset, report.StartDate, report.EndDate)
	}
	pdf.CellFormat(0, 8, rangeLine, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Totals table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(95, 8, "Metric", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 8, "Value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	totals := [][2]string{
		{"Impressions", strconv.FormatInt(report.Totals.Impressions, 10)},
		{"Clicks", strconv.FormatInt(report.Totals.Clicks, 10)},
		{"Spend", report.Totals.Spend.StringFixed(2)},
		{"CTR", fmt.Sprintf("%.2f%%", report.Totals.CTR*100)},
	}
	for _, row := range totals {
		pdf.CellFormat(95, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Daily breakdown
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(55, 8, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Impressions", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Clicks", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Spend", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range report.Series {
		date := b.Date
		if b.Estimated {
			date += " *"
		}
		pdf.CellFormat(55, 7, date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, strconv.FormatInt(b.Impressions, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, strconv.FormatInt(b.Clicks, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, b.Spend.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "* estimated from recent days; the platform had not reported this day yet", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
