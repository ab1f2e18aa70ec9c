// Package session owns the analytical state for one logical caller: the
// loaded dataset, the active filter criteria, and every view derived
// from them. All derivations are recomputed in full and synchronously
// on each mutation; nothing is persisted.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"compras/internal/core"
)

// Session holds a dataset and its derived views. It is not safe for
// concurrent use; callers sharing a session serialize access.
type Session struct {
	normalizer core.Normalizer

	dataset  []core.Record
	averages core.ReferenceAverages
	facets   core.Facets

	criteria   core.FilterCriteria
	view       []core.Record
	aggregates core.Aggregates
}

// LoadSummary reports the outcome of a dataset load.
type LoadSummary struct {
	Records        int
	DroppedNoDate  int
	DroppedNumeric int
}

// Option configures a Session.
type Option func(*Session)

// WithStrictNormalization makes loads drop rows whose numeric fields
// are missing or unparseable instead of coercing them to zero.
func WithStrictNormalization() Option {
	return func(s *Session) { s.normalizer.Strict = true }
}

// New returns an empty session with no dataset and no active filters.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Load replaces the dataset wholesale from raw rows, recomputes the
// reference averages and facets, and resets nothing about the filters:
// the active criteria are reapplied to the new dataset.
func (s *Session) Load(rows []core.RawRow) LoadSummary {
	res := s.normalizer.Normalize(rows)
	s.dataset = res.Records
	s.averages = core.ComputeReferenceAverages(s.dataset)
	s.facets = core.EnumerateFacets(s.dataset)
	s.recompute()
	return LoadSummary{
		Records:        len(res.Records),
		DroppedNoDate:  res.DroppedNoDate,
		DroppedNumeric: res.DroppedNumeric,
	}
}

// SetFilter mutates one criteria field and recomputes the derived
// views. The value "all" (any case) or the empty string clears the
// field; month additionally accepts "1".."12".
func (s *Session) SetFilter(field core.FilterField, value string) error {
	value = strings.TrimSpace(value)
	cleared := value == "" || strings.EqualFold(value, "all")

	switch field {
	case core.FilterMonth:
		if cleared {
			s.criteria.Month = core.MonthAll
			break
		}
		m, err := strconv.Atoi(value)
		if err != nil || m < 1 || m > 12 {
			return fmt.Errorf("set month filter %q: %w", value, core.ErrInvalidMonth)
		}
		s.criteria.Month = m
	case core.FilterDescription:
		if cleared {
			s.criteria.Description = ""
		} else {
			s.criteria.Description = value
		}
	case core.FilterSupplier:
		if cleared {
			s.criteria.Supplier = ""
		} else {
			s.criteria.Supplier = value
		}
	case core.FilterSearch:
		// Search has no "all" sentinel; whatever arrives is the term.
		s.criteria.Search = value
	default:
		return fmt.Errorf("set filter %q: %w", field, core.ErrUnknownFilterField)
	}

	s.recompute()
	return nil
}

// ResetFilters restores every criteria field to its default and
// recomputes the derived views over the full dataset.
func (s *Session) ResetFilters() {
	s.criteria = core.FilterCriteria{}
	s.recompute()
}

// Criteria returns a copy of the active filter criteria.
func (s *Session) Criteria() core.FilterCriteria {
	return s.criteria
}

// Facets returns the filter choices derived from the full dataset at
// load time.
func (s *Session) Facets() core.Facets {
	return s.facets
}

// Aggregates returns the derived views for the current filtered subset.
func (s *Session) Aggregates() core.Aggregates {
	return s.aggregates
}

// ReferenceAverages returns the per-description reference prices
// computed over the full dataset.
func (s *Session) ReferenceAverages() core.ReferenceAverages {
	return s.averages
}

// Records returns up to limit records of the filtered view in dataset
// order. A non-positive limit returns the whole view. The result is a
// copy; callers cannot mutate session state through it.
func (s *Session) Records(limit int) []core.Record {
	n := len(s.view)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.Record, n)
	copy(out, s.view[:n])
	return out
}

// Size returns the number of records in the full dataset.
func (s *Session) Size() int {
	return len(s.dataset)
}

// Matches returns the number of records in the filtered view.
func (s *Session) Matches() int {
	return len(s.view)
}

// AlertFor classifies a record's unit price against the session's
// reference averages.
func (s *Session) AlertFor(r core.Record) core.Alert {
	return core.Classify(r, s.averages)
}

// recompute rebuilds the filtered view and its aggregates. Called on
// every load and filter mutation.
func (s *Session) recompute() {
	s.view = core.ApplyFilters(s.dataset, s.criteria)
	s.aggregates = core.Aggregate(s.view)
}
