package core

// ReferenceAverages maps a description to its quantity-weighted average
// unit price, computed over the entire dataset regardless of filters.
type ReferenceAverages map[string]float64

// ComputeReferenceAverages groups records by description and returns
// each group's total spend divided by its total quantity. Descriptions
// whose total quantity is zero are omitted: their reference price is
// unknown and the alert classifier treats them as no-alert.
func ComputeReferenceAverages(records []Record) ReferenceAverages {
	type totals struct {
		spent float64
		qty   float64
	}
	stats := make(map[string]*totals, len(records))
	for _, r := range records {
		t, ok := stats[r.Description]
		if !ok {
			t = &totals{}
			stats[r.Description] = t
		}
		t.spent += r.Amount()
		t.qty += r.Quantity
	}

	averages := make(ReferenceAverages, len(stats))
	for desc, t := range stats {
		if t.qty > 0 {
			averages[desc] = t.spent / t.qty
		}
	}
	return averages
}
