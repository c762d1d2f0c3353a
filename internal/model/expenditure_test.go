package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpenditure_Defaults(t *testing.T) {
	before := time.Now()
	e := NewExpenditure(nil)

	assert.Equal(t, int64(0), e.ID())
	assert.Zero(t, e.Amount())
	assert.Nil(t, e.Category())
	assert.False(t, e.Date().Before(before))
}

func TestNewExpenditure_FromRaw(t *testing.T) {
	date := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	e := NewExpenditure(&RawExpenditure{
		ID:       42,
		Amount:   decimal.RequireFromString("19.99"),
		Date:     date,
		Category: &RawCategory{ID: 1, Name: "Food"},
	})

	assert.Equal(t, int64(42), e.ID())
	assert.InDelta(t, 19.99, e.Amount(), 1e-9)
	assert.True(t, date.Equal(e.Date()))
	assert.Nil(t, e.Category(), "category is only attached through SetCategory")
}

func TestRawExpenditure_AmountCoercion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
	}{
		{name: "numeric string", payload: `{"id":1,"amount":"12.5","date":"2024-01-02T10:00:00Z"}`, want: 12.5},
		{name: "number", payload: `{"id":1,"amount":12.5,"date":"2024-01-02T10:00:00Z"}`, want: 12.5},
		{name: "negative", payload: `{"id":1,"amount":-100.53,"date":"2024-01-02T10:00:00Z"}`, want: -100.53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw RawExpenditure
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))
			assert.Equal(t, tt.want, NewExpenditure(&raw).Amount())
		})
	}
}

func TestExpenditure_SetAmountString(t *testing.T) {
	e := NewExpenditure(nil)
	require.NoError(t, e.SetAmountString("12.5"))
	assert.Equal(t, 12.5, e.Amount())

	err := e.SetAmountString("twelve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
	assert.Equal(t, 12.5, e.Amount(), "failed coercion leaves the amount untouched")
}

func TestExpenditure_SetDateString(t *testing.T) {
	e := NewExpenditure(nil)

	require.NoError(t, e.SetDateString("2024-05-01T08:30:00+02:00"))
	assert.Equal(t, "2024-05-01T08:30:00+02:00", e.Date().Format(time.RFC3339))

	require.NoError(t, e.SetDateString("2024-06-10"))
	assert.Equal(t, "2024-06-10", e.Date().Format(DateLayout))

	assert.Error(t, e.SetDateString("yesterday"))
}

func TestExpenditure_SetCategory(t *testing.T) {
	e := NewExpenditure(nil)
	c := NewCategory(&RawCategory{ID: 2, Name: "Travel"})

	e.SetCategory(c)
	assert.Same(t, c, e.Category())

	e.SetCategory(nil)
	assert.Nil(t, e.Category())
}

func TestCategoryStat_NullName(t *testing.T) {
	var stats []CategoryStat
	payload := `[{"id":1,"name":"Food","total":12.5},{"id":0,"name":null,"total":3}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &stats))

	require.Len(t, stats, 2)
	assert.Equal(t, CategoryStat{ID: 1, Name: "Food", Total: 12.5}, stats[0])
	assert.Equal(t, CategoryStat{ID: 0, Name: "", Total: 3}, stats[1])
}
