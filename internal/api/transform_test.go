package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenditureEnvelope_Results(t *testing.T) {
	tests := []struct {
		wantMeta map[string]any
		name     string
		payload  string
		wantLen  int
	}{
		{
			name:     "top level window folded into meta",
			payload:  `{"data":[{"id":1,"amount":"3.5","date":"2024-03-01T00:00:00Z"}],"limit":10,"offset":20}`,
			wantMeta: map[string]any{"limit": 10, "offset": 20},
			wantLen:  1,
		},
		{
			name:     "meta wins over top level keys",
			payload:  `{"meta":{"limit":5},"data":[],"limit":10}`,
			wantMeta: map[string]any{"limit": float64(5)},
		},
		{
			name:     "no meta at all",
			payload:  `{"data":[]}`,
			wantMeta: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var envelope expenditureEnvelope
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &envelope))

			results := envelope.results()
			assert.Equal(t, tt.wantLen, results.Len())
			assert.Equal(t, len(tt.wantMeta), len(results.Meta))
			for k, v := range tt.wantMeta {
				assert.Equal(t, v, results.Meta[k], k)
			}
			assert.NotNil(t, results.Data)
		})
	}
}

func TestTransformExpenditure(t *testing.T) {
	var envelope expenditureEnvelope
	payload := `{"data":[
		{"id":7,"amount":12.25,"date":"2024-03-02T10:00:00Z","category":{"id":3,"name":"Food"}},
		{"id":8,"amount":"-4","date":"2024-03-03T10:00:00Z","category":null}
	]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &envelope))

	results := envelope.results()
	require.Equal(t, 2, results.Len())

	first := results.Data[0]
	assert.Equal(t, int64(7), first.ID())
	assert.Equal(t, 12.25, first.Amount())
	require.NotNil(t, first.Category())
	assert.Equal(t, int64(3), first.Category().ID())
	assert.Equal(t, "Food", first.Category().Name())

	second := results.Data[1]
	assert.Equal(t, -4.0, second.Amount())
	assert.Nil(t, second.Category())
}

func TestCategoryEnvelope_Results(t *testing.T) {
	var envelope categoryEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"meta":{"total":2},"data":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`), &envelope))

	results := envelope.results()
	require.Equal(t, 2, results.Len())
	assert.Equal(t, "A", results.Data[0].Name())
	assert.Equal(t, "B", results.Data[1].Name())
	assert.Equal(t, float64(2), results.Meta["total"])
}

func TestTransformExpenditure_Nil(t *testing.T) {
	expenditure := transformExpenditure(nil)
	require.NotNil(t, expenditure)
	assert.Nil(t, expenditure.Category())
	assert.Zero(t, expenditure.ID())
}
