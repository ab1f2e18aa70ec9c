package core

import (
	"errors"
	"time"
)

const (
	// DefaultSupplier is substituted when a raw row carries no supplier.
	DefaultSupplier = "Unknown"
	// DefaultDescription is substituted when a raw row carries no description.
	DefaultDescription = "No Description"
)

// Filter fields accepted by Session.SetFilter.
const (
	FilterMonth       FilterField = "month"
	FilterDescription FilterField = "description"
	FilterSupplier    FilterField = "supplier"
	FilterSearch      FilterField = "search"
)

// MonthAll selects every month (no month filter active).
const MonthAll = 0

type (
	FilterField string

	// RawRow is one loosely-typed row as produced by a tabular data
	// source. Keys have no guaranteed casing or naming; values may be
	// strings, numbers or dates depending on the decoder.
	RawRow map[string]any

	// Record is one canonical procurement transaction line.
	Record struct {
		Date        time.Time
		Supplier    string
		Article     string
		Description string
		Quantity    float64
		Price       float64
	}

	// FilterCriteria holds the active filter state for a session.
	// Zero values mean "no filter" for every field.
	FilterCriteria struct {
		Month       int // MonthAll or 1..12
		Description string
		Supplier    string
		Search      string
	}

	// Facets are the distinct selectable filter values present in a
	// dataset, each sorted ascending.
	Facets struct {
		Months       []int
		Descriptions []string
		Suppliers    []string
	}
)

var (
	ErrUnknownFilterField = errors.New("unknown filter field")
	ErrInvalidMonth       = errors.New("invalid month")
)

// Amount returns the monetary amount of the line (quantity times unit
// price). Negative quantities or prices pass through unchanged; returns
// and credits are accepted as-is.
func (r Record) Amount() float64 {
	return r.Quantity * r.Price
}

// Month returns the record's calendar month, 1-12.
func (r Record) Month() int {
	return int(r.Date.Month())
}

// IsZero reports whether every field of the criteria is at its default,
// i.e. no filter is active.
func (c FilterCriteria) IsZero() bool {
	return c.Month == MonthAll && c.Description == "" && c.Supplier == "" && c.Search == ""
}

// Validate checks that the criteria values are within range.
func (c FilterCriteria) Validate() error {
	if c.Month != MonthAll && (c.Month < 1 || c.Month > 12) {
		return ErrInvalidMonth
	}
	return nil
}
