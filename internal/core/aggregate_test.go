package core

import (
	"math"
	"reflect"
	"testing"
)

func TestAggregate_KPIs(t *testing.T) {
	view := []Record{
		{Date: day(1, 5), Supplier: "A", Description: "Steel Rod", Quantity: 2, Price: 10},
		{Date: day(2, 3), Supplier: "B", Description: "Copper Wire", Quantity: 3, Price: 20},
	}

	agg := Aggregate(view)

	if agg.TotalSpent != 80 {
		t.Errorf("TotalSpent = %v, want 80", agg.TotalSpent)
	}
	if agg.TotalQuantity != 5 {
		t.Errorf("TotalQuantity = %v, want 5", agg.TotalQuantity)
	}
	if agg.DistinctDescriptions != 2 {
		t.Errorf("DistinctDescriptions = %d, want 2", agg.DistinctDescriptions)
	}
	if agg.DistinctSuppliers != 2 {
		t.Errorf("DistinctSuppliers = %d, want 2", agg.DistinctSuppliers)
	}
	if agg.AverageUnitPrice != 16 {
		t.Errorf("AverageUnitPrice = %v, want 16", agg.AverageUnitPrice)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	view := filterFixture()

	first := Aggregate(view)
	second := Aggregate(view)

	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate() is not idempotent over the same view")
	}
}

func TestAggregate_MonthlySeriesAlwaysTwelve(t *testing.T) {
	tests := []struct {
		name string
		view []Record
	}{
		{"empty view", nil},
		{"single month", []Record{{Date: day(7, 1), Quantity: 1, Price: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(tt.view)
			if len(agg.MonthlySeries) != 12 {
				t.Fatalf("MonthlySeries has %d entries, want 12", len(agg.MonthlySeries))
			}
		})
	}
}

func TestAggregate_MonthlySeriesBuckets(t *testing.T) {
	view := []Record{
		{Date: day(1, 5), Quantity: 1, Price: 10},
		{Date: day(1, 9), Quantity: 2, Price: 5},
		{Date: day(12, 31), Quantity: 1, Price: 7},
	}

	agg := Aggregate(view)

	if agg.MonthlySeries[0] != 20 {
		t.Errorf("January total = %v, want 20", agg.MonthlySeries[0])
	}
	if agg.MonthlySeries[11] != 7 {
		t.Errorf("December total = %v, want 7", agg.MonthlySeries[11])
	}
	for i := 1; i < 11; i++ {
		if agg.MonthlySeries[i] != 0 {
			t.Errorf("month %d total = %v, want 0", i+1, agg.MonthlySeries[i])
		}
	}
}

func TestAggregate_TopNStability(t *testing.T) {
	// Six descriptions with distinct spends: top five, descending.
	names := []string{"F", "E", "D", "C", "B", "A"}
	view := make([]Record, 0, len(names))
	for i, name := range names {
		view = append(view, Record{Date: day(1, i+1), Description: name, Supplier: "S", Quantity: 1, Price: float64(i + 1)})
	}

	agg := Aggregate(view)

	if len(agg.TopDescriptions) != 5 {
		t.Fatalf("TopDescriptions has %d entries, want 5", len(agg.TopDescriptions))
	}
	want := []string{"A", "B", "C", "D", "E"} // spends 6,5,4,3,2
	for i, entry := range agg.TopDescriptions {
		if entry.Name != want[i] {
			t.Errorf("TopDescriptions[%d] = %q, want %q", i, entry.Name, want[i])
		}
	}
	for i := 1; i < len(agg.TopDescriptions); i++ {
		if agg.TopDescriptions[i].Amount > agg.TopDescriptions[i-1].Amount {
			t.Error("TopDescriptions not sorted by spend descending")
		}
	}
}

func TestAggregate_TopNTieBreakByName(t *testing.T) {
	view := []Record{
		{Date: day(1, 1), Description: "Zeta", Supplier: "Zeta Co", Quantity: 1, Price: 10},
		{Date: day(1, 2), Description: "Alpha", Supplier: "Alpha Co", Quantity: 1, Price: 10},
	}

	agg := Aggregate(view)

	if agg.TopDescriptions[0].Name != "Alpha" || agg.TopSuppliers[0].Name != "Alpha Co" {
		t.Errorf("tie not broken by name ascending: got %q / %q",
			agg.TopDescriptions[0].Name, agg.TopSuppliers[0].Name)
	}
}

func TestAggregate_DescriptionSummary(t *testing.T) {
	view := []Record{
		{Date: day(1, 1), Description: "Rod", Quantity: 2, Price: 10},
		{Date: day(2, 1), Description: "Rod", Quantity: 2, Price: 20},
		{Date: day(1, 2), Description: "Free Sample", Quantity: 0, Price: 0},
	}

	agg := Aggregate(view)

	if len(agg.DescriptionSummary) != 2 {
		t.Fatalf("DescriptionSummary has %d rows, want 2", len(agg.DescriptionSummary))
	}
	rod := agg.DescriptionSummary[0]
	if rod.Description != "Rod" || rod.Quantity != 4 || rod.Spend != 60 || rod.AverageUnitPrice != 15 {
		t.Errorf("Rod summary = %+v, want qty 4, spend 60, avg 15", rod)
	}
	sample := agg.DescriptionSummary[1]
	if sample.AverageUnitPrice != 0 {
		t.Errorf("zero-quantity summary average = %v, want 0", sample.AverageUnitPrice)
	}
}

func TestAggregate_EmptyView(t *testing.T) {
	agg := Aggregate(nil)

	if agg.TotalSpent != 0 || agg.TotalQuantity != 0 || agg.AverageUnitPrice != 0 {
		t.Errorf("empty view KPIs = %+v, want zeros", agg)
	}
	if len(agg.DescriptionSummary) != 0 || len(agg.TopDescriptions) != 0 || len(agg.TopSuppliers) != 0 {
		t.Error("empty view should produce empty tables and rollups")
	}
	if math.Signbit(agg.AverageUnitPrice) {
		t.Error("AverageUnitPrice should be a clean zero")
	}
}
