package cli

import (
	"strconv"

	"github.com/Veraticus/budgetr/internal/model"
	"github.com/Veraticus/budgetr/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// NoCategoryLabel is shown for expenditures without a category.
const NoCategoryLabel = "none"

// FormatAmount renders an amount with two decimals.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func newTable(amountColumns map[int]bool, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case amountColumns[col]:
				return AmountCellStyle
			default:
				return TableCellStyle
			}
		})
}

// RenderExpenditures renders expenditures as a table in the given order.
func RenderExpenditures(expenditures []*model.Expenditure) string {
	t := newTable(map[int]bool{3: true}, "ID", "Date", "Category", "Amount")
	for _, e := range expenditures {
		category := NoCategoryLabel
		if c := e.Category(); c.IsReference() {
			category = c.Name()
		}
		t.Row(
			strconv.FormatInt(e.ID(), 10),
			e.Date().Format(model.DateLayout),
			category,
			FormatAmount(e.Amount()),
		)
	}
	return t.Render()
}

// RenderCategories renders categories as a table.
func RenderCategories(categories []*model.Category) string {
	t := newTable(nil, "ID", "Name")
	for _, c := range categories {
		t.Row(strconv.FormatInt(c.ID(), 10), c.Name())
	}
	return t.Render()
}

// RenderStats renders category totals followed by a total row.
func RenderStats(stats []model.CategoryStat) string {
	t := newTable(map[int]bool{1: true}, "Category", "Total")

	total := decimal.Zero
	for _, stat := range stats {
		name := stat.Name
		if name == "" {
			name = NoCategoryLabel
		}
		t.Row(name, FormatAmount(stat.Total))
		total = total.Add(decimal.NewFromFloat(stat.Total))
	}
	t.Row(BoldStyle.Render("Total"), BoldStyle.Render(total.StringFixed(2)))

	return t.Render()
}

// RenderMatrix renders a category × range report with a total column.
func RenderMatrix(m *report.Matrix) string {
	titles := m.Titles()
	headers := append([]string{"Category"}, titles...)
	headers = append(headers, "Total")

	amountColumns := make(map[int]bool, len(titles)+1)
	for i := 1; i <= len(titles)+1; i++ {
		amountColumns[i] = true
	}

	t := newTable(amountColumns, headers...)
	for _, row := range m.Rows {
		cells := make([]string, 0, len(row.Amounts)+2)
		cells = append(cells, row.Label())
		for _, amount := range row.Amounts {
			cells = append(cells, amount.StringFixed(2))
		}
		cells = append(cells, row.Total().StringFixed(2))
		t.Row(cells...)
	}

	return t.Render()
}
