package view

import (
	"context"
	"fmt"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/shopspring/decimal"
)

// Summary is the cart as rendered on the cart page.
type Summary struct {
	Items      []cart.LineItem
	TotalItems int
	TotalPrice decimal.Decimal
}

func summarize(s cart.State) Summary {
	return Summary{Items: s.Items(), TotalItems: s.TotalItems(), TotalPrice: s.TotalPrice()}
}

// CartView is the cart page. Quantities are checked against the line's
// stock snapshot here, the store accepts whatever it is given.
type CartView struct {
	lifecycle
	store CartStore
}

func NewCartView(store CartStore, opts Options) *CartView {
	return &CartView{lifecycle: newLifecycle(opts), store: store}
}

func (c *CartView) Summary() Summary { return summarize(c.store.Snapshot()) }

// Increment adds one unit, up to the stock.
func (c *CartView) Increment(ctx context.Context, id catalog.ProductID) (Summary, error) {
	item, ok := c.store.Item(id)
	if !ok {
		return c.Summary(), storeerrors.ErrProductNotFound
	}
	return c.SetQuantity(ctx, id, item.Quantity+1)
}

// Decrement removes one unit. The line disappears at zero.
func (c *CartView) Decrement(ctx context.Context, id catalog.ProductID) (Summary, error) {
	item, ok := c.store.Item(id)
	if !ok {
		return c.Summary(), storeerrors.ErrProductNotFound
	}
	return c.SetQuantity(ctx, id, item.Quantity-1)
}

// SetQuantity replaces the line's quantity, quantity <= 0 removes the line.
// A request above the stock snapshot raises an error toast, leaves the
// cart unchanged and returns an error matching ErrOverStock.
func (c *CartView) SetQuantity(ctx context.Context, id catalog.ProductID, quantity int) (Summary, error) {
	item, ok := c.store.Item(id)
	if !ok {
		return c.Summary(), storeerrors.ErrProductNotFound
	}
	if _, err := cart.ClampQuantity(quantity, item.Stock); err != nil {
		c.toasts.Error(stockMessage(item.Title, item.Stock))
		return c.Summary(), err
	}
	return summarize(c.store.SetQuantity(ctx, id, quantity)), nil
}

// Remove deletes the line and confirms with a toast.
func (c *CartView) Remove(ctx context.Context, id catalog.ProductID) (Summary, error) {
	item, ok := c.store.Item(id)
	if !ok {
		return c.Summary(), storeerrors.ErrProductNotFound
	}
	state := c.store.RemoveItem(ctx, id)
	c.toasts.Success(fmt.Sprintf("%s removed from cart", item.Title))
	return summarize(state), nil
}

// Clear empties the cart on the shopper's request.
func (c *CartView) Clear(ctx context.Context) Summary {
	state := c.store.Clear(ctx)
	c.toasts.Info("Cart cleared")
	return summarize(state)
}
