package view

import (
	"context"
	"errors"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
)

// Detail is the product page. It has its own cooldown, separate from the listing.
type Detail struct {
	lifecycle
	adder
	source ProductSource

	id         catalog.ProductID
	product    *catalog.Product
	loadErr    error
	generation uint64
}

func NewDetail(source ProductSource, store CartStore, opts Options) *Detail {
	d := &Detail{source: source}
	d.lifecycle = newLifecycle(opts)
	d.adder = newAdder(&d.lifecycle, store, opts.Cooldown)
	return d
}

// Load fetches product id, with the same locking rules as Listing.Load.
// On failure Product returns nil and an error toast is raised.
func (d *Detail) Load(ctx context.Context, id catalog.ProductID) error {
	var gen uint64
	d.run(func() {
		d.generation++
		gen = d.generation
	})

	product, err := d.source.GetProduct(ctx, id)

	var result error
	d.run(func() {
		if d.disposed || gen != d.generation {
			result = ErrDisposed
			return
		}
		d.id = id
		d.loadErr = err
		if err != nil {
			d.product = nil
			if errors.Is(err, storeerrors.ErrProductNotFound) {
				d.toasts.Error("Product not found")
			} else {
				d.toasts.Error("Failed to load product details")
			}
			result = err
			return
		}
		d.product = product
	})
	return result
}

// Product is the loaded product, nil if the last load failed.
func (d *Detail) Product() *catalog.Product {
	if d.product == nil {
		return nil
	}
	p := *d.product
	return &p
}

// ProductID is the id of the last finished load.
func (d *Detail) ProductID() catalog.ProductID { return d.id }

func (d *Detail) LoadErr() error { return d.loadErr }

// Add puts one unit of the loaded product in the cart.
func (d *Detail) Add(ctx context.Context, now time.Time) (cart.State, error) {
	if d.product == nil {
		return d.store.Snapshot(), storeerrors.ErrProductNotFound
	}
	return d.add(ctx, *d.product, now)
}

// Disabled reports whether the add control waits for its cooldown.
func (d *Detail) Disabled() bool {
	if d.product == nil {
		return false
	}
	return d.isDisabled(d.product.ID)
}
