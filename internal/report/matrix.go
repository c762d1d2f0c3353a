// Package report builds category-by-period totals from the budgetr API and
// renders them locally as Excel or PDF documents.
package report

import (
	"sort"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/shopspring/decimal"
)

// NoCategory labels the bucket of expenditures without a category.
const NoCategory = "none"

// Row holds the totals of one category, one amount per range. The bucket of
// uncategorized expenditures has Uncategorized set and an empty Category.
type Row struct {
	Category      string
	Uncategorized bool
	Amounts       []decimal.Decimal
}

// Label is the text shown for the row.
func (r Row) Label() string {
	if r.Uncategorized {
		return NoCategory
	}
	return r.Category
}

// Total sums the row across all ranges.
func (r Row) Total() decimal.Decimal {
	return decimal.Sum(decimal.Zero, r.Amounts...)
}

// Matrix is a category × range table of totals. Rows are sorted by
// category name with the NoCategory bucket last.
type Matrix struct {
	Ranges []api.ExportRange
	Rows   []Row
}

// Titles returns the column headers, one per range.
func (m *Matrix) Titles() []string {
	titles := make([]string, len(m.Ranges))
	for i, r := range m.Ranges {
		titles[i] = r.Title
		if titles[i] == "" {
			titles[i] = r.Start.Format("2006-01-02") + " - " + r.End.Format("2006-01-02")
		}
	}
	return titles
}

// ColumnTotals returns the sum of every range column.
func (m *Matrix) ColumnTotals() []decimal.Decimal {
	totals := make([]decimal.Decimal, len(m.Ranges))
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, row := range m.Rows {
		for i, amount := range row.Amounts {
			totals[i] = totals[i].Add(amount)
		}
	}
	return totals
}

// Row returns the row of a named category.
func (m *Matrix) Row(category string) (Row, bool) {
	for _, row := range m.Rows {
		if !row.Uncategorized && row.Category == category {
			return row, true
		}
	}
	return Row{}, false
}

// Uncategorized returns the bucket row.
func (m *Matrix) Uncategorized() Row {
	for _, row := range m.Rows {
		if row.Uncategorized {
			return row
		}
	}
	return Row{Uncategorized: true}
}

func newMatrix(ranges []api.ExportRange, categories []string) *Matrix {
	names := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, name := range categories {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, Row{Category: name, Amounts: zeroAmounts(len(ranges))})
	}
	rows = append(rows, Row{Uncategorized: true, Amounts: zeroAmounts(len(ranges))})

	return &Matrix{Ranges: ranges, Rows: rows}
}

func zeroAmounts(n int) []decimal.Decimal {
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = decimal.Zero
	}
	return amounts
}

func (m *Matrix) add(category string, column int, amount decimal.Decimal) {
	uncategorized := category == ""
	for i := range m.Rows {
		if m.Rows[i].Uncategorized == uncategorized && m.Rows[i].Category == category {
			m.Rows[i].Amounts[column] = m.Rows[i].Amounts[column].Add(amount)
			return
		}
	}

	// A category created after the listing was fetched.
	amounts := zeroAmounts(len(m.Ranges))
	amounts[column] = amount

	last := len(m.Rows) - 1
	m.Rows = append(m.Rows[:last], Row{Category: category, Amounts: amounts}, m.Rows[last])
	sort.SliceStable(m.Rows[:last+1], func(i, j int) bool {
		return m.Rows[i].Category < m.Rows[j].Category
	})
}
