package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"airbnb-analyzer/models"
)

// PDFWriter renders a report as a printable A4 document.
type PDFWriter struct{}

func NewPDFWriter() *PDFWriter { return &PDFWriter{} }

func (p *PDFWriter) Format() string { return "pdf" }

func (p *PDFWriter) Export(report *models.Report, name, dir string) (string, error) {
	path, err := generateFilename(name, dir, p.Format())
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, "  AirBnB Analyzer Report", "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, t := range reportTables(report) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(t.title))
		pdf.Ln(8)

		width := usable / float64(max(len(t.header), 1))
		fontSize := 9.0
		if len(t.header) > 8 {
			fontSize = 6
		}

		pdf.SetFont("Arial", "B", fontSize)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(50, 50, 50)
		for _, h := range t.header {
			pdf.CellFormat(width, 6, tr(fit(pdf, h, width)), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", fontSize)
		for _, row := range t.rows {
			for _, c := range row {
				pdf.CellFormat(width, 6, tr(fit(pdf, c, width)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("pdf: write %q: %w", path, err)
	}
	return filepath.Abs(path)
}

// fit shortens s with an ellipsis until it fits in width at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s)+pad <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...")+pad > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
