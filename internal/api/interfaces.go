// Package api is the budgetr HTTP client: the only code that talks to the
// /api/* endpoints of the budgetr server.
package api

import (
	"context"
	"net/url"

	"github.com/Veraticus/budgetr/internal/model"
)

// API is the set of server operations available to views.
// Inject it instead of reaching for a shared client; MockClient satisfies it
// in tests.
type API interface {
	GetExpenditures(ctx context.Context, query ExpenditureQuery) (*model.Results[*model.Expenditure], error)
	GetExpenditure(ctx context.Context, id int64) (*model.Expenditure, error)
	CreateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error)
	UpdateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error)
	DeleteExpenditure(ctx context.Context, expenditure *model.Expenditure) ([]byte, error)
	GetCategories(ctx context.Context) (*model.Results[*model.Category], error)
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	GetCategoryStats(ctx context.Context, query StatsQuery) ([]model.CategoryStat, error)
	GenerateExcel(ctx context.Context, ranges []ExportRange) error
}

// Downloader triggers a file download by posting a form-encoded body.
type Downloader interface {
	Download(ctx context.Context, endpoint string, form url.Values) error
}
