package api

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"
)

// TimeFormat is the timestamp layout the server parses.
const TimeFormat = time.RFC3339

// Sort columns and orders understood by the expenditures endpoint.
const (
	SortID     = "id"
	SortAmount = "amount"
	SortDate   = "date"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var errMissingRange = errors.New("start and end are both required")

// ExpenditureQuery filters, sorts and pages the expenditures listing.
// Zero-valued fields are left out of the request.
type ExpenditureQuery struct {
	Start  time.Time
	End    time.Time
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// Values builds the query string. Order only applies when Sort is set and is
// sent as "<sort>-<order>".
func (q ExpenditureQuery) Values() url.Values {
	v := url.Values{}

	if !q.Start.IsZero() {
		v.Set("start", q.Start.Format(TimeFormat))
	}
	if !q.End.IsZero() {
		v.Set("end", q.End.Format(TimeFormat))
	}

	if q.Sort != "" {
		sort := q.Sort
		if q.Order != "" {
			sort += "-" + q.Order
		}
		v.Set("sort", sort)
	}

	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}

	return v
}

// orderDropped reports whether Order was given without Sort.
func (q ExpenditureQuery) orderDropped() bool {
	return q.Order != "" && q.Sort == ""
}

// StatsQuery selects the period for category statistics. Both bounds are required.
type StatsQuery struct {
	Start time.Time
	End   time.Time
}

// Validate checks that both bounds are present.
func (q StatsQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return errMissingRange
	}
	return nil
}

// Values builds the query string.
func (q StatsQuery) Values() url.Values {
	v := url.Values{}
	v.Set("start", q.Start.Format(TimeFormat))
	v.Set("end", q.End.Format(TimeFormat))
	return v
}

// ExportRange is one column of the Excel export.
type ExportRange struct {
	Start time.Time
	End   time.Time
	Title string
}

// MarshalJSON writes the range with server-formatted timestamps.
func (r ExportRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Title string `json:"title"`
	}{
		Start: r.Start.Format(TimeFormat),
		End:   r.End.Format(TimeFormat),
		Title: r.Title,
	})
}

// UnmarshalJSON reads a range written by MarshalJSON.
func (r *ExportRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
		Title string    `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Start, r.End, r.Title = raw.Start, raw.End, raw.Title
	return nil
}
