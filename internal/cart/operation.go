package cart

import (
	"slices"

	"github.com/abgdnv/shopease/internal/catalog"
)

// Operation is one of Add, Remove, SetQuantity or Clear.
type Operation interface {
	// Name labels the operation in logs and metrics.
	Name() string
	apply(State) State
}

// Add inserts the product with quantity 1, or increments an existing line.
// An existing line keeps its original price and stock snapshot.
type Add struct {
	Product catalog.Product
}

// Remove deletes the line for ProductID. Missing ids are a no-op.
type Remove struct {
	ProductID catalog.ProductID
}

// SetQuantity replaces the line's quantity with exactly Quantity.
// Quantity <= 0 removes the line. Missing ids are a no-op.
type SetQuantity struct {
	ProductID catalog.ProductID
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

func (Add) Name() string         { return "add" }
func (Remove) Name() string      { return "remove" }
func (SetQuantity) Name() string { return "set_quantity" }
func (Clear) Name() string       { return "clear" }

// Apply is the cart transition function. It never fails and never modifies s.
func Apply(s State, op Operation) State {
	return op.apply(s)
}

func (op Add) apply(s State) State {
	i := s.index(op.Product.ID)
	if i < 0 {
		items := make([]LineItem, len(s.items), len(s.items)+1)
		copy(items, s.items)
		return State{items: append(items, newLineItem(op.Product))}
	}
	items := slices.Clone(s.items)
	items[i].Quantity++
	return State{items: items}
}

func (op Remove) apply(s State) State {
	i := s.index(op.ProductID)
	if i < 0 {
		return s
	}
	items := make([]LineItem, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	return State{items: items}
}

func (op SetQuantity) apply(s State) State {
	if op.Quantity <= 0 {
		return Remove{ProductID: op.ProductID}.apply(s)
	}
	i := s.index(op.ProductID)
	if i < 0 {
		return s
	}
	items := slices.Clone(s.items)
	items[i].Quantity = op.Quantity
	return State{items: items}
}

func (Clear) apply(State) State {
	return State{}
}
