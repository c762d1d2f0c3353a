package report

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

// SheetName is the worksheet the Excel report is written to.
const SheetName = "Expenditures"

// WriteXLSX renders the matrix as a workbook: a header row with the range
// titles, then one row per category.
func WriteXLSX(w io.Writer, m *Matrix) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Category")
	for _, title := range m.Titles() {
		header.AddCell().SetString(title)
	}

	for _, r := range m.Rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Label())
		for _, amount := range r.Amounts {
			row.AddCell().SetFloat(amount.InexactFloat64())
		}
	}

	totals := sheet.AddRow()
	totals.AddCell().SetString("Total")
	for _, total := range m.ColumnTotals() {
		totals.AddCell().SetFloat(total.InexactFloat64())
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
