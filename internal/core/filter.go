package core

import "strings"

// ApplyFilters returns the subsequence of the dataset matching every
// active criterion (logical AND), preserving the original order. An
// empty dataset yields an empty view, never an error.
func ApplyFilters(dataset []Record, criteria FilterCriteria) []Record {
	view := make([]Record, 0, len(dataset))
	search := strings.ToLower(criteria.Search)
	for _, r := range dataset {
		if criteria.Month != MonthAll && r.Month() != criteria.Month {
			continue
		}
		if criteria.Description != "" && r.Description != criteria.Description {
			continue
		}
		if criteria.Supplier != "" && r.Supplier != criteria.Supplier {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		view = append(view, r)
	}
	return view
}
