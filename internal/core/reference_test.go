package core

import (
	"testing"
	"time"
)

func day(month, d int) time.Time {
	return time.Date(2024, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func TestComputeReferenceAverages_QuantityWeighted(t *testing.T) {
	records := []Record{
		{Date: day(1, 1), Description: "Steel Rod", Quantity: 2, Price: 10},
		{Date: day(2, 1), Description: "Steel Rod", Quantity: 3, Price: 20},
	}

	averages := ComputeReferenceAverages(records)

	// (2*10 + 3*20) / (2+3) = 16
	if got := averages["Steel Rod"]; got != 16 {
		t.Errorf("average for Steel Rod = %v, want 16", got)
	}
}

func TestComputeReferenceAverages_OmitsZeroQuantity(t *testing.T) {
	records := []Record{
		{Date: day(1, 1), Description: "Phantom", Quantity: 0, Price: 99},
		{Date: day(1, 2), Description: "Real", Quantity: 1, Price: 5},
	}

	averages := ComputeReferenceAverages(records)

	if _, ok := averages["Phantom"]; ok {
		t.Error("zero-quantity description should be omitted from averages")
	}
	if got := averages["Real"]; got != 5 {
		t.Errorf("average for Real = %v, want 5", got)
	}
}

func TestComputeReferenceAverages_IgnoresFilters(t *testing.T) {
	// Averages are a function of the full dataset only; the caller is
	// expected to pass the unfiltered records.
	records := []Record{
		{Date: day(1, 1), Description: "Wire", Quantity: 1, Price: 10},
		{Date: day(6, 1), Description: "Wire", Quantity: 1, Price: 30},
	}

	averages := ComputeReferenceAverages(records)

	if got := averages["Wire"]; got != 20 {
		t.Errorf("average for Wire = %v, want 20", got)
	}
}
