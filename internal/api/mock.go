package api

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/budgetr/internal/model"
)

// MockClient is a configurable API implementation for tests. Unset functions
// return empty results.
type MockClient struct {
	GetExpendituresFn   func(ctx context.Context, query ExpenditureQuery) (*model.Results[*model.Expenditure], error)
	GetExpenditureFn    func(ctx context.Context, id int64) (*model.Expenditure, error)
	CreateExpenditureFn func(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error)
	UpdateExpenditureFn func(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error)
	DeleteExpenditureFn func(ctx context.Context, expenditure *model.Expenditure) ([]byte, error)
	GetCategoriesFn     func(ctx context.Context) (*model.Results[*model.Category], error)
	CreateCategoryFn    func(ctx context.Context, category *model.Category) (*model.Category, error)
	GetCategoryStatsFn  func(ctx context.Context, query StatsQuery) ([]model.CategoryStat, error)
	GenerateExcelFn     func(ctx context.Context, ranges []ExportRange) error

	// Call tracking
	ExpenditureQueries []ExpenditureQuery
	StatsQueries       []StatsQuery
	Created            []*model.Expenditure
	Deleted            []int64
	ExportCalls        [][]ExportRange
	mu                 sync.Mutex
}

// NewMockClient creates a new mock API client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetExpenditures implements API.
func (m *MockClient) GetExpenditures(ctx context.Context, query ExpenditureQuery) (*model.Results[*model.Expenditure], error) {
	m.mu.Lock()
	m.ExpenditureQueries = append(m.ExpenditureQueries, query)
	m.mu.Unlock()

	if m.GetExpendituresFn != nil {
		return m.GetExpendituresFn(ctx, query)
	}
	return &model.Results[*model.Expenditure]{Meta: model.Meta{}, Data: []*model.Expenditure{}}, nil
}

// GetExpenditure implements API.
func (m *MockClient) GetExpenditure(ctx context.Context, id int64) (*model.Expenditure, error) {
	if m.GetExpenditureFn != nil {
		return m.GetExpenditureFn(ctx, id)
	}
	return model.NewExpenditure(&model.RawExpenditure{ID: id}), nil
}

// CreateExpenditure implements API.
func (m *MockClient) CreateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error) {
	m.mu.Lock()
	m.Created = append(m.Created, expenditure)
	m.mu.Unlock()

	if m.CreateExpenditureFn != nil {
		return m.CreateExpenditureFn(ctx, expenditure)
	}
	return expenditure, nil
}

// UpdateExpenditure implements API.
func (m *MockClient) UpdateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error) {
	if m.UpdateExpenditureFn != nil {
		return m.UpdateExpenditureFn(ctx, expenditure)
	}
	return expenditure, nil
}

// DeleteExpenditure implements API.
func (m *MockClient) DeleteExpenditure(ctx context.Context, expenditure *model.Expenditure) ([]byte, error) {
	if expenditure == nil {
		return nil, normalize("deleteExpenditure", &argumentError{errors.New("expenditure is required")})
	}

	m.mu.Lock()
	m.Deleted = append(m.Deleted, expenditure.ID())
	m.mu.Unlock()

	if m.DeleteExpenditureFn != nil {
		return m.DeleteExpenditureFn(ctx, expenditure)
	}
	return []byte{}, nil
}

// GetCategories implements API.
func (m *MockClient) GetCategories(ctx context.Context) (*model.Results[*model.Category], error) {
	if m.GetCategoriesFn != nil {
		return m.GetCategoriesFn(ctx)
	}
	return &model.Results[*model.Category]{Meta: model.Meta{}, Data: []*model.Category{}}, nil
}

// CreateCategory implements API.
func (m *MockClient) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if m.CreateCategoryFn != nil {
		return m.CreateCategoryFn(ctx, category)
	}
	return category, nil
}

// GetCategoryStats implements API.
func (m *MockClient) GetCategoryStats(ctx context.Context, query StatsQuery) ([]model.CategoryStat, error) {
	m.mu.Lock()
	m.StatsQueries = append(m.StatsQueries, query)
	m.mu.Unlock()

	if m.GetCategoryStatsFn != nil {
		return m.GetCategoryStatsFn(ctx, query)
	}
	return []model.CategoryStat{}, nil
}

// GenerateExcel implements API.
func (m *MockClient) GenerateExcel(ctx context.Context, ranges []ExportRange) error {
	m.mu.Lock()
	m.ExportCalls = append(m.ExportCalls, ranges)
	m.mu.Unlock()

	if m.GenerateExcelFn != nil {
		return m.GenerateExcelFn(ctx, ranges)
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExpenditureQueries = nil
	m.StatsQueries = nil
	m.Created = nil
	m.Deleted = nil
	m.ExportCalls = nil
}

// Ensure MockClient implements API interface.
var _ API = (*MockClient)(nil)
