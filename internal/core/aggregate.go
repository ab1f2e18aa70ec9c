package core

import "sort"

// TopN is the number of entries in the top-by-spend rollups.
const TopN = 5

type (
	// NameAmount is one chart-ready rollup entry.
	NameAmount struct {
		Name   string
		Amount float64
	}

	// DescriptionTotals is one row of the per-description summary table.
	DescriptionTotals struct {
		Description      string
		Quantity         float64
		Spend            float64
		AverageUnitPrice float64 // 0 when Quantity is 0
	}

	// Aggregates holds every derived view computed from a filtered
	// subset. All values are raw numerics; formatting belongs to the
	// presentation layer.
	Aggregates struct {
		TotalSpent           float64
		TotalQuantity        float64
		DistinctDescriptions int
		DistinctSuppliers    int
		AverageUnitPrice     float64 // 0 when TotalQuantity is 0

		// MonthlySeries always has 12 entries; index 0 is January.
		MonthlySeries [12]float64

		// DescriptionSummary is sorted by spend descending, name
		// ascending on ties.
		DescriptionSummary []DescriptionTotals

		TopDescriptions []NameAmount
		TopSuppliers    []NameAmount
	}
)

// Aggregate computes all derived views from a filtered subset. Pure
// function: two calls on the same view yield identical results.
func Aggregate(view []Record) Aggregates {
	var agg Aggregates

	byDescription := make(map[string]*DescriptionTotals)
	descOrder := make([]string, 0)
	bySupplier := make(map[string]float64)
	supOrder := make([]string, 0)

	for _, r := range view {
		amount := r.Amount()
		agg.TotalSpent += amount
		agg.TotalQuantity += r.Quantity
		agg.MonthlySeries[r.Month()-1] += amount

		dt, ok := byDescription[r.Description]
		if !ok {
			dt = &DescriptionTotals{Description: r.Description}
			byDescription[r.Description] = dt
			descOrder = append(descOrder, r.Description)
		}
		dt.Quantity += r.Quantity
		dt.Spend += amount

		if _, ok := bySupplier[r.Supplier]; !ok {
			supOrder = append(supOrder, r.Supplier)
		}
		bySupplier[r.Supplier] += amount
	}

	agg.DistinctDescriptions = len(byDescription)
	agg.DistinctSuppliers = len(bySupplier)
	if agg.TotalQuantity > 0 {
		agg.AverageUnitPrice = agg.TotalSpent / agg.TotalQuantity
	}

	agg.DescriptionSummary = make([]DescriptionTotals, 0, len(descOrder))
	for _, desc := range descOrder {
		dt := *byDescription[desc]
		if dt.Quantity > 0 {
			dt.AverageUnitPrice = dt.Spend / dt.Quantity
		}
		agg.DescriptionSummary = append(agg.DescriptionSummary, dt)
	}
	sortBySpend(agg.DescriptionSummary)

	descRollup := make([]NameAmount, 0, len(descOrder))
	for _, dt := range agg.DescriptionSummary {
		descRollup = append(descRollup, NameAmount{Name: dt.Description, Amount: dt.Spend})
	}
	agg.TopDescriptions = topN(descRollup, TopN)

	supRollup := make([]NameAmount, 0, len(supOrder))
	for _, sup := range supOrder {
		supRollup = append(supRollup, NameAmount{Name: sup, Amount: bySupplier[sup]})
	}
	agg.TopSuppliers = topN(supRollup, TopN)

	return agg
}

// sortBySpend orders summaries by spend descending with name ascending
// as the deterministic tie-break.
func sortBySpend(summary []DescriptionTotals) {
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Spend != summary[j].Spend {
			return summary[i].Spend > summary[j].Spend
		}
		return summary[i].Description < summary[j].Description
	})
}

// topN sorts entries by amount descending (name ascending on ties) and
// truncates to n.
func topN(entries []NameAmount, n int) []NameAmount {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
