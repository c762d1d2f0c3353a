package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout accepted next to RFC 3339.
const DateLayout = "2006-01-02"

// RawExpenditure is the wire form of an expenditure. Amount accepts both a
// JSON number and a numeric string.
type RawExpenditure struct {
	Date     time.Time       `json:"date"`
	Category *RawCategory    `json:"category,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	ID       int64           `json:"id"`
}

// Expenditure is a single monetary record.
type Expenditure struct {
	date     time.Time
	category *Category
	amount   float64
	id       int64
}

// NewExpenditure builds an expenditure from an optional raw payload. Fields
// left at their zero value keep the defaults: amount 0 and the current time.
// The category is never taken from the payload; use SetCategory.
func NewExpenditure(raw *RawExpenditure) *Expenditure {
	e := &Expenditure{date: time.Now()}
	if raw == nil {
		return e
	}

	if raw.ID != 0 {
		e.id = raw.ID
	}
	if !raw.Amount.IsZero() {
		e.amount = raw.Amount.InexactFloat64()
	}
	if !raw.Date.IsZero() {
		e.date = raw.Date
	}

	return e
}

// ID implements Identifiable.
func (e *Expenditure) ID() int64 {
	return e.id
}

// Amount returns the amount spent.
func (e *Expenditure) Amount() float64 {
	return e.amount
}

// SetAmount replaces the amount.
func (e *Expenditure) SetAmount(amount float64) {
	e.amount = amount
}

// SetAmountString coerces textual input such as "12.5" into the amount.
func (e *Expenditure) SetAmountString(amount string) error {
	v, err := ParseAmount(amount)
	if err != nil {
		return err
	}
	e.amount = v
	return nil
}

// Date returns when the money was spent.
func (e *Expenditure) Date() time.Time {
	return e.date
}

// SetDate replaces the date.
func (e *Expenditure) SetDate(date time.Time) {
	e.date = date
}

// SetDateString parses an RFC 3339 timestamp or a YYYY-MM-DD day.
func (e *Expenditure) SetDateString(date string) error {
	t, err := ParseDate(date)
	if err != nil {
		return err
	}
	e.date = t
	return nil
}

// Category returns the referenced category, or nil.
func (e *Expenditure) Category() *Category {
	return e.category
}

// SetCategory points the expenditure at a category. Passing nil clears it.
func (e *Expenditure) SetCategory(category *Category) {
	e.category = category
}

// ParseAmount converts a numeric string into an amount.
func ParseAmount(amount string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.InexactFloat64(), nil
}

// ParseDate parses an RFC 3339 timestamp, falling back to a local calendar day.
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 3339 or %s", date, DateLayout)
	}
	return t, nil
}
