package model

// CategoryStat is one aggregation row of the category statistics endpoint.
// The server reports expenditures without a category as a row with a null
// name, which decodes to the empty string.
type CategoryStat struct {
	Name  string  `json:"name"`
	ID    int64   `json:"id"`
	Total float64 `json:"total"`
}
