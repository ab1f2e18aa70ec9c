package core

import "sort"

// EnumerateFacets derives the distinct filter choices present in the
// full dataset: months numeric ascending, descriptions and suppliers
// lexicographic ascending. Computed once per load, never per filter.
func EnumerateFacets(dataset []Record) Facets {
	months := make(map[int]struct{})
	descriptions := make(map[string]struct{})
	suppliers := make(map[string]struct{})
	for _, r := range dataset {
		months[r.Month()] = struct{}{}
		descriptions[r.Description] = struct{}{}
		suppliers[r.Supplier] = struct{}{}
	}

	f := Facets{
		Months:       make([]int, 0, len(months)),
		Descriptions: make([]string, 0, len(descriptions)),
		Suppliers:    make([]string, 0, len(suppliers)),
	}
	for m := range months {
		f.Months = append(f.Months, m)
	}
	sort.Ints(f.Months)
	for d := range descriptions {
		f.Descriptions = append(f.Descriptions, d)
	}
	sort.Strings(f.Descriptions)
	for s := range suppliers {
		f.Suppliers = append(f.Suppliers, s)
	}
	sort.Strings(f.Suppliers)
	return f
}
