package report

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/Veraticus/budgetr/internal/testutil/categories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

var (
	january  = api.ExportRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Title: "January"}
	february = api.ExportRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Title: "February"}
)

func newMockAPI() *api.MockClient {
	mock := api.NewMockClient()
	mock.GetCategoriesFn = func(_ context.Context) (*model.Results[*model.Category], error) {
		return categories.NewBuilder().WithFixture(categories.FixtureMinimal).Results(), nil
	}
	mock.GetCategoryStatsFn = func(_ context.Context, query api.StatsQuery) ([]model.CategoryStat, error) {
		if query.Start.Equal(january.Start) {
			return []model.CategoryStat{
				{Name: "", Total: 4.5},
				{ID: 2, Name: "Food", Total: 120.25},
			}, nil
		}
		return []model.CategoryStat{
			{ID: 1, Name: "Travel", Total: 300},
			{ID: 2, Name: "Food", Total: 80},
		}, nil
	}
	return mock
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func assertAmounts(t *testing.T, want, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "column %d: want %s, got %s", i, want[i], got[i])
	}
}

func TestCollect(t *testing.T) {
	mock := newMockAPI()

	matrix, err := Collect(context.Background(), mock, []api.ExportRange{january, february})
	require.NoError(t, err)

	names := make([]string, 0, len(matrix.Rows))
	for _, row := range matrix.Rows {
		names = append(names, row.Label())
	}
	assert.Equal(t, []string{"Food", "Rent", "Travel", NoCategory}, names)

	food, ok := matrix.Row("Food")
	require.True(t, ok)
	assertAmounts(t, amounts("120.25", "80"), food.Amounts)
	assert.True(t, decimal.RequireFromString("200.25").Equal(food.Total()))

	rent, _ := matrix.Row("Rent")
	assertAmounts(t, amounts("0", "0"), rent.Amounts)

	none := matrix.Uncategorized()
	assertAmounts(t, amounts("4.5", "0"), none.Amounts)

	assertAmounts(t, amounts("124.75", "380"), matrix.ColumnTotals())
	assert.Equal(t, []string{"January", "February"}, matrix.Titles())
	assert.Len(t, mock.StatsQueries, 2)
}

func TestCollect_UnknownCategoryFromStats(t *testing.T) {
	mock := newMockAPI()
	mock.GetCategoryStatsFn = func(_ context.Context, _ api.StatsQuery) ([]model.CategoryStat, error) {
		return []model.CategoryStat{{ID: 9, Name: "Books", Total: 12}}, nil
	}

	matrix, err := Collect(context.Background(), mock, []api.ExportRange{january})
	require.NoError(t, err)

	names := make([]string, 0, len(matrix.Rows))
	for _, row := range matrix.Rows {
		names = append(names, row.Label())
	}
	assert.Equal(t, []string{"Books", "Food", "Rent", "Travel", NoCategory}, names)
}

func TestCollect_CategoryNamedNone(t *testing.T) {
	mock := newMockAPI()
	mock.GetCategoryStatsFn = func(_ context.Context, _ api.StatsQuery) ([]model.CategoryStat, error) {
		return []model.CategoryStat{
			{ID: 7, Name: "none", Total: 5},
			{Name: "", Total: 7},
		}, nil
	}

	matrix, err := Collect(context.Background(), mock, []api.ExportRange{january})
	require.NoError(t, err)
	require.Len(t, matrix.Rows, 5)

	named, ok := matrix.Row("none")
	require.True(t, ok)
	assert.False(t, named.Uncategorized)
	assertAmounts(t, amounts("5"), named.Amounts)

	bucket := matrix.Uncategorized()
	assertAmounts(t, amounts("7"), bucket.Amounts)
	assert.True(t, matrix.Rows[len(matrix.Rows)-1].Uncategorized)
	assertAmounts(t, amounts("12"), matrix.ColumnTotals())
}

func TestMatrix_ListedCategoryNamedNone(t *testing.T) {
	matrix := newMatrix([]api.ExportRange{january}, []string{"none", "Food"})
	matrix.add("none", 0, decimal.NewFromInt(5))
	matrix.add("", 0, decimal.NewFromInt(7))

	require.Len(t, matrix.Rows, 3)
	assert.Equal(t, "Food", matrix.Rows[0].Category)
	assert.Equal(t, "none", matrix.Rows[1].Category)
	assert.False(t, matrix.Rows[1].Uncategorized)
	assertAmounts(t, amounts("5"), matrix.Rows[1].Amounts)
	assert.True(t, matrix.Rows[2].Uncategorized)
	assert.Equal(t, NoCategory, matrix.Rows[2].Label())
	assertAmounts(t, amounts("7"), matrix.Rows[2].Amounts)
}

func TestCollect_Error(t *testing.T) {
	mock := newMockAPI()
	var calls atomic.Int32
	mock.GetCategoryStatsFn = func(ctx context.Context, _ api.StatsQuery) ([]model.CategoryStat, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("Something went wrong on the server.")
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	matrix, err := Collect(context.Background(), mock, []api.ExportRange{january, february})
	assert.Nil(t, matrix)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Something went wrong on the server.")
}

func TestCollect_NoRanges(t *testing.T) {
	matrix, err := Collect(context.Background(), newMockAPI(), nil)
	require.NoError(t, err)
	assert.Empty(t, matrix.Titles())
	assert.Len(t, matrix.Rows, 4)
}

func TestMatrix_TitlesFallback(t *testing.T) {
	untitled := january
	untitled.Title = ""
	m := &Matrix{Ranges: []api.ExportRange{untitled}}

	assert.Equal(t, []string{"2024-01-01 - 2024-02-01"}, m.Titles())
}

func TestWriteXLSX(t *testing.T) {
	matrix, err := Collect(context.Background(), newMockAPI(), []api.ExportRange{january, february})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, matrix))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, SheetName, sheet.Name)
	require.Len(t, sheet.Rows, 6)

	header := sheet.Rows[0].Cells
	require.Len(t, header, 3)
	assert.Equal(t, "Category", header[0].Value)
	assert.Equal(t, "January", header[1].Value)
	assert.Equal(t, "February", header[2].Value)

	food := sheet.Rows[1].Cells
	assert.Equal(t, "Food", food[0].Value)
	total, err := food[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 120.25, total, 0.0001)

	assert.Equal(t, NoCategory, sheet.Rows[4].Cells[0].Value)
	assert.Equal(t, "Total", sheet.Rows[5].Cells[0].Value)
}

func TestWritePDF(t *testing.T) {
	matrix, err := Collect(context.Background(), newMockAPI(), []api.ExportRange{january})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, matrix, time.Date(2024, 2, 2, 9, 30, 0, 0, time.UTC)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}
