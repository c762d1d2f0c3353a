package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Collect fetches the category listing and the stats of every range
// concurrently and folds them into a Matrix. Range order is preserved.
func Collect(ctx context.Context, client api.API, ranges []api.ExportRange) (*Matrix, error) {
	g, gctx := errgroup.WithContext(ctx)

	var categories *model.Results[*model.Category]
	g.Go(func() error {
		var err error
		categories, err = client.GetCategories(gctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		return nil
	})

	stats := make([][]model.CategoryStat, len(ranges))
	for i, r := range ranges {
		g.Go(func() error {
			result, err := client.GetCategoryStats(gctx, api.StatsQuery{Start: r.Start, End: r.End})
			if err != nil {
				return fmt.Errorf("failed to get stats for range %d: %w", i+1, err)
			}
			stats[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, 0, categories.Len())
	for _, c := range categories.Data {
		names = append(names, c.Name())
	}

	matrix := newMatrix(ranges, names)
	for i, rangeStats := range stats {
		for _, stat := range rangeStats {
			matrix.add(stat.Name, i, decimal.NewFromFloat(stat.Total))
		}
	}

	return matrix, nil
}
