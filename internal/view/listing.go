package view

import (
	"context"
	"slices"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
)

// Listing is the catalog page: every product, filterable by title and category.
type Listing struct {
	lifecycle
	adder
	source ProductSource

	products   []catalog.Product
	categories []string
	loaded     bool
	loadErr    error
	generation uint64
}

func NewListing(source ProductSource, store CartStore, opts Options) *Listing {
	l := &Listing{source: source}
	l.lifecycle = newLifecycle(opts)
	l.adder = newAdder(&l.lifecycle, store, opts.Cooldown)
	return l
}

// Load fetches the catalog. It must be called outside the session lock:
// the fetch runs unlocked and the result is applied through Run.
// A result that arrives after Dispose or after a newer Load is dropped.
func (l *Listing) Load(ctx context.Context) error {
	var gen uint64
	l.run(func() {
		l.generation++
		gen = l.generation
	})

	products, err := l.source.ListProducts(ctx)

	var result error
	l.run(func() {
		if l.disposed || gen != l.generation {
			result = ErrDisposed
			return
		}
		l.loaded = true
		l.loadErr = err
		if err != nil {
			l.products, l.categories = nil, nil
			l.toasts.Error("Failed to load products")
			result = err
			return
		}
		l.products = products
		l.categories = catalog.Categories(products)
	})
	return result
}

// Loaded reports whether a Load finished, successfully or not.
func (l *Listing) Loaded() bool { return l.loaded }

// LoadErr is the error of the last finished Load.
func (l *Listing) LoadErr() error { return l.loadErr }

// Products returns the loaded products matching query and category.
func (l *Listing) Products(query, category string) []catalog.Product {
	return catalog.Filter(l.products, query, category)
}

// Categories returns the categories of the loaded products.
func (l *Listing) Categories() []string { return slices.Clone(l.categories) }

// Add puts one unit of a listed product in the cart. It fails with
// *CooldownError, ErrOverStock or ErrProductNotFound, raising a toast for the first two.
func (l *Listing) Add(ctx context.Context, id catalog.ProductID, now time.Time) (cart.State, error) {
	i := slices.IndexFunc(l.products, func(p catalog.Product) bool { return p.ID == id })
	if i < 0 {
		return l.store.Snapshot(), storeerrors.ErrProductNotFound
	}
	return l.add(ctx, l.products[i], now)
}

// Disabled reports whether the add control of id is waiting for its cooldown.
func (l *Listing) Disabled(id catalog.ProductID) bool { return l.isDisabled(id) }

// DisabledIDs lists the products whose add control is disabled.
func (l *Listing) DisabledIDs() []catalog.ProductID { return l.disabledIDs() }
