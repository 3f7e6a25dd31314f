package catalog

import "strings"

// AllCategories selects every category in Filter.
const AllCategories = "all"

// Filter keeps products whose title contains query (case-insensitive) and
// whose category equals category. An empty or "all" category matches everything.
func Filter(products []Product, query, category string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	matchAll := category == "" || category == AllCategories

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		if !matchAll && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
