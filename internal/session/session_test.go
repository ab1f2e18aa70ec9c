package session

import (
	"reflect"
	"testing"

	"compras/internal/core"
)

func ledgerRows() []core.RawRow {
	return []core.RawRow{
		{"fecha": "2024-01-05", "proveedor": "A", "descripcion": "Steel Rod", "cantidad": 2.0, "precio": 10.0},
		{"fecha": "2024-01-09", "proveedor": "B", "descripcion": "Copper Wire", "cantidad": 1.0, "precio": 8.0},
		{"fecha": "2024-02-03", "proveedor": "A", "descripcion": "Steel Rod", "cantidad": 3.0, "precio": 20.0},
		{"proveedor": "C", "descripcion": "Dateless"},
	}
}

func TestSession_Load(t *testing.T) {
	s := New()

	summary := s.Load(ledgerRows())

	if summary.Records != 3 {
		t.Errorf("LoadSummary.Records = %d, want 3", summary.Records)
	}
	if summary.DroppedNoDate != 1 {
		t.Errorf("LoadSummary.DroppedNoDate = %d, want 1", summary.DroppedNoDate)
	}
	if s.Size() != 3 {
		t.Errorf("Size() = %d, want 3", s.Size())
	}
	if got := s.ReferenceAverages()["Steel Rod"]; got != 16 {
		t.Errorf("reference average for Steel Rod = %v, want 16", got)
	}
	facets := s.Facets()
	if !reflect.DeepEqual(facets.Months, []int{1, 2}) {
		t.Errorf("facet months = %v, want [1 2]", facets.Months)
	}
}

func TestSession_LoadReplacesDataset(t *testing.T) {
	s := New()
	s.Load(ledgerRows())

	s.Load([]core.RawRow{{"fecha": "2024-06-01", "descripcion": "Only One", "cantidad": 1.0, "precio": 1.0}})

	if s.Size() != 1 {
		t.Errorf("Size() after reload = %d, want 1", s.Size())
	}
	if _, ok := s.ReferenceAverages()["Steel Rod"]; ok {
		t.Error("averages from a previous load survived a reload")
	}
}

func TestSession_SetFilterRecomputes(t *testing.T) {
	s := New()
	s.Load(ledgerRows())

	if err := s.SetFilter(core.FilterSupplier, "A"); err != nil {
		t.Fatalf("SetFilter() error: %v", err)
	}

	records := s.Records(0)
	if len(records) != 2 {
		t.Fatalf("Records() after supplier filter = %d, want 2", len(records))
	}
	if got := s.Aggregates().TotalSpent; got != 80 {
		t.Errorf("TotalSpent with supplier=A = %v, want 80", got)
	}

	if err := s.SetFilter(core.FilterMonth, "1"); err != nil {
		t.Fatalf("SetFilter() error: %v", err)
	}
	records = s.Records(0)
	if len(records) != 1 || records[0].Description != "Steel Rod" {
		t.Errorf("month+supplier AND filter returned %v", records)
	}
}

func TestSession_SetFilterValidation(t *testing.T) {
	s := New()

	if err := s.SetFilter(core.FilterMonth, "13"); err == nil {
		t.Error("SetFilter accepted month 13")
	}
	if err := s.SetFilter("color", "red"); err == nil {
		t.Error("SetFilter accepted unknown field")
	}
	if err := s.SetFilter(core.FilterMonth, "ALL"); err != nil {
		t.Errorf("SetFilter rejected ALL: %v", err)
	}
}

func TestSession_ResetFilters(t *testing.T) {
	s := New()
	s.Load(ledgerRows())

	if err := s.SetFilter(core.FilterSupplier, "A"); err != nil {
		t.Fatalf("SetFilter() error: %v", err)
	}
	if err := s.SetFilter(core.FilterSearch, "rod"); err != nil {
		t.Fatalf("SetFilter() error: %v", err)
	}

	s.ResetFilters()

	if !s.Criteria().IsZero() {
		t.Errorf("Criteria() after reset = %+v, want zero criteria", s.Criteria())
	}
	if got := len(s.Records(0)); got != s.Size() {
		t.Errorf("Records() after reset = %d, want full dataset %d", got, s.Size())
	}
}

func TestSession_RecordsLimit(t *testing.T) {
	s := New()
	s.Load(ledgerRows())

	if got := len(s.Records(2)); got != 2 {
		t.Errorf("Records(2) = %d records, want 2", got)
	}
	if got := len(s.Records(100)); got != 3 {
		t.Errorf("Records(100) = %d records, want 3", got)
	}
}

func TestSession_AlertFor(t *testing.T) {
	s := New()
	s.Load(ledgerRows())

	// Steel Rod reference is 16; a 20-priced record deviates +25%.
	records := s.Records(0)
	var rod core.Record
	for _, r := range records {
		if r.Description == "Steel Rod" && r.Price == 20 {
			rod = r
		}
	}

	alert := s.AlertFor(rod)
	if alert.Level != core.AlertOver {
		t.Errorf("AlertFor() level = %q, want %q", alert.Level, core.AlertOver)
	}
	if alert.Reference != 16 {
		t.Errorf("AlertFor() reference = %v, want 16", alert.Reference)
	}
}

func TestSession_StrictOption(t *testing.T) {
	s := New(WithStrictNormalization())

	summary := s.Load([]core.RawRow{
		{"fecha": "2024-01-05", "cantidad": "2", "precio": "10"},
		{"fecha": "2024-01-06", "cantidad": "oops", "precio": "10"},
	})

	if summary.Records != 1 || summary.DroppedNumeric != 1 {
		t.Errorf("strict load summary = %+v, want 1 record, 1 numeric drop", summary)
	}
}

func TestSession_EmptyState(t *testing.T) {
	s := New()

	if got := len(s.Records(0)); got != 0 {
		t.Errorf("Records() on empty session = %d, want 0", got)
	}
	agg := s.Aggregates()
	if agg.TotalSpent != 0 || len(agg.MonthlySeries) != 12 {
		t.Errorf("empty session aggregates = %+v", agg)
	}
}
