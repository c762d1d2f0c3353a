package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

const (
	categoryWidth = 50.0
	amountWidth   = 30.0
	rowHeight     = 7.0
)

// WritePDF renders the matrix as a landscape A4 table.
func WritePDF(w io.Writer, m *Matrix, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Expenditure report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Expenditure report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated "+generated.Format("Jan 2, 2006 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(categoryWidth, rowHeight, "Category", "B", 0, "L", false, 0, "")
	for _, title := range m.Titles() {
		pdf.CellFormat(amountWidth, rowHeight, title, "B", 0, "R", false, 0, "")
	}
	pdf.Ln(rowHeight)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range m.Rows {
		pdf.CellFormat(categoryWidth, rowHeight, row.Label(), "", 0, "L", false, 0, "")
		for _, amount := range row.Amounts {
			pdf.CellFormat(amountWidth, rowHeight, amount.StringFixed(2), "", 0, "R", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(categoryWidth, rowHeight, "Total", "T", 0, "L", false, 0, "")
	for _, total := range m.ColumnTotals() {
		pdf.CellFormat(amountWidth, rowHeight, total.StringFixed(2), "T", 0, "R", false, 0, "")
	}
	pdf.Ln(rowHeight)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
