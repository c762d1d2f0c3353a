package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/Veraticus/budgetr/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		want   string
		amount float64
	}{
		{amount: 12.5, want: "12.50"},
		{amount: -100.53, want: "-100.53"},
		{amount: 0, want: "0.00"},
		{amount: 0.005, want: "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount))
		})
	}
}

func TestRenderExpenditures(t *testing.T) {
	food := model.NewCategory(&model.RawCategory{ID: 1, Name: "Food"})
	first := model.NewExpenditure(&model.RawExpenditure{ID: 7, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromFloat(12.5)})
	first.SetCategory(food)
	second := model.NewExpenditure(&model.RawExpenditure{ID: 8, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(3)})

	out := RenderExpenditures([]*model.Expenditure{first, second})

	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, NoCategoryLabel)
	assert.Less(t, strings.Index(out, "12.50"), strings.Index(out, "3.00"), "rows keep their order")
}

func TestRenderCategories(t *testing.T) {
	out := RenderCategories([]*model.Category{
		model.NewCategory(&model.RawCategory{ID: 1, Name: "Food"}),
		model.NewCategory(&model.RawCategory{ID: 2, Name: "Travel"}),
	})

	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "Travel")
}

func TestRenderStats(t *testing.T) {
	out := RenderStats([]model.CategoryStat{
		{Name: "", Total: 3},
		{ID: 1, Name: "Food", Total: 15.25},
	})

	assert.Contains(t, out, NoCategoryLabel)
	assert.Contains(t, out, "15.25")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "18.25")
}

func TestRenderMatrix(t *testing.T) {
	out := RenderMatrix(&report.Matrix{
		Ranges: []api.ExportRange{{Title: "Q1"}, {Title: "Q2"}},
		Rows: []report.Row{
			{Category: "Food", Amounts: []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(5)}},
		},
	})

	assert.Contains(t, out, "Q1")
	assert.Contains(t, out, "Q2")
	assert.Contains(t, out, "15.00")
}

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectError   bool
	}{
		{name: "successful read", input: "test input\n", expectedValue: "test input"},
		{name: "read with extra whitespace", input: "  test input  \n", expectedValue: "test input"},
		{name: "empty line", input: "\n", expectedValue: ""},
		{name: "no trailing newline", input: "yes", expectedValue: "yes"},
		{name: "empty input", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			result, err := nbr.ReadLine(context.Background())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestNonBlockingReader_ContextCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewNonBlockingReader(pr).ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(context.Background(), NewNonBlockingReader(strings.NewReader(tt.input)), &out, "Delete expenditure 4?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete expenditure 4? [y/N]")
		})
	}
}

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestInterruptHandler(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Re-run the import to continue.")

	ctx, stop := h.HandleInterrupts(context.Background())
	defer stop()

	assert.False(t, h.WasInterrupted())
	h.signals <- syscall.SIGINT

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}

	assert.True(t, h.WasInterrupted())
	assert.Contains(t, out.String(), "Interrupted!")
	assert.Contains(t, out.String(), "Re-run the import to continue.")
}

func TestInterruptHandler_Stop(t *testing.T) {
	h := NewInterruptHandler(io.Discard, "")
	ctx, stop := h.HandleInterrupts(context.Background())
	stop()

	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
}

func TestNewProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 2, "Importing")

	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	assert.True(t, bar.IsFinished())
}
