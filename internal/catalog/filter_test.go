package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Filter(t *testing.T) {
	products := []Product{
		{ID: "1", Title: "Essence Mascara Lash Princess", Category: "beauty"},
		{ID: "2", Title: "Eyeshadow Palette", Category: "beauty"},
		{ID: "3", Title: "Bed Side Table", Category: "furniture"},
	}
	testCases := []struct {
		name     string
		query    string
		category string
		expected []ProductID
	}{
		{name: "no filter", expected: []ProductID{"1", "2", "3"}},
		{name: "all category", category: AllCategories, expected: []ProductID{"1", "2", "3"}},
		{name: "case-insensitive title", query: "MASCARA", expected: []ProductID{"1"}},
		{name: "category only", category: "furniture", expected: []ProductID{"3"}},
		{name: "query and category", query: "e", category: "beauty", expected: []ProductID{"1", "2"}},
		{name: "no match", query: "sofa", category: "beauty", expected: []ProductID{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(products, tc.query, tc.category)
			ids := make([]ProductID, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func Test_Categories(t *testing.T) {
	products := []Product{
		{Category: "beauty"}, {Category: "furniture"}, {Category: "beauty"}, {Category: ""}, {Category: "groceries"},
	}
	assert.Equal(t, []string{"beauty", "furniture", "groceries"}, Categories(products))
	assert.Equal(t, []string{}, Categories(nil))
}
