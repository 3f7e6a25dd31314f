// Package cart holds the per-session shopping cart: its state, the operations
// that transform it and the store that persists it after every mutation.
package cart

import (
	"slices"

	"github.com/abgdnv/shopease/internal/catalog"
	"github.com/shopspring/decimal"
)

// LineItem is one product's entry in the cart. Price and stock are
// snapshots taken when the product was first added.
type LineItem struct {
	ProductID catalog.ProductID `json:"id"`
	Title     string            `json:"title"`
	UnitPrice decimal.Decimal   `json:"price"`
	Thumbnail string            `json:"thumbnail"`
	Stock     int               `json:"stock"`
	Quantity  int               `json:"quantity"`
}

// Subtotal is UnitPrice x Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func newLineItem(p catalog.Product) LineItem {
	return LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Thumbnail: p.Thumbnail,
		Stock:     p.Stock,
		Quantity:  1,
	}
}

// State is an ordered set of line items keyed by product id.
// Insertion order is display order. The zero value is an empty cart.
// A State is never modified in place, operations return a new one.
type State struct {
	items []LineItem
}

// NewState builds a state from items, which must have unique ids and positive quantities.
func NewState(items ...LineItem) State {
	return State{items: slices.Clone(items)}
}

// Items returns a copy of the line items in display order.
func (s State) Items() []LineItem {
	if len(s.items) == 0 {
		return []LineItem{}
	}
	return slices.Clone(s.items)
}

// Item looks up the line item for id.
func (s State) Item(id catalog.ProductID) (LineItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

func (s State) Len() int { return len(s.items) }

func (s State) IsEmpty() bool { return len(s.items) == 0 }

// TotalItems is the sum of all quantities.
func (s State) TotalItems() int {
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price x quantity over all line items.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Equal reports whether both states hold the same items in the same order.
func (s State) Equal(o State) bool {
	return slices.EqualFunc(s.items, o.items, func(a, b LineItem) bool {
		return a.ProductID == b.ProductID &&
			a.Title == b.Title &&
			a.UnitPrice.Equal(b.UnitPrice) &&
			a.Thumbnail == b.Thumbnail &&
			a.Stock == b.Stock &&
			a.Quantity == b.Quantity
	})
}

func (s State) index(id catalog.ProductID) int {
	return slices.IndexFunc(s.items, func(it LineItem) bool { return it.ProductID == id })
}
