package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	"github.com/abgdnv/shopease/internal/ratelimit"
	"github.com/abgdnv/shopease/pkg/deferred"
)

// ErrDisposed is returned by Load when the view was disposed while the catalog answered.
var ErrDisposed = errors.New("view disposed")

// CartStore is the cart as the views use it. *cart.Store implements it.
type CartStore interface {
	AddItem(ctx context.Context, p catalog.Product) cart.State
	RemoveItem(ctx context.Context, id catalog.ProductID) cart.State
	SetQuantity(ctx context.Context, id catalog.ProductID, quantity int) cart.State
	Clear(ctx context.Context) cart.State
	Snapshot() cart.State
	Item(id catalog.ProductID) (cart.LineItem, bool)
}

// adder is the add-to-cart control shared by the listing and the detail view:
// cooldown gate, stock check, then the store. After an accepted add the
// control stays disabled until the cooldown elapses.
type adder struct {
	lc       *lifecycle
	store    CartStore
	limiter  *ratelimit.Cooldown
	disabled map[catalog.ProductID]*deferred.Task
}

func newAdder(lc *lifecycle, store CartStore, cooldown time.Duration) adder {
	return adder{
		lc:       lc,
		store:    store,
		limiter:  ratelimit.NewCooldown(cooldown),
		disabled: make(map[catalog.ProductID]*deferred.Task),
	}
}

func (a *adder) add(ctx context.Context, p catalog.Product, now time.Time) (cart.State, error) {
	if remaining := a.limiter.Remaining(p.ID, now); remaining > 0 {
		a.lc.toasts.Error(cooldownMessage(remaining))
		return a.store.Snapshot(), &CooldownError{ProductID: p.ID, Remaining: remaining}
	}

	held, stock := 0, p.Stock
	if item, ok := a.store.Item(p.ID); ok {
		held, stock = item.Quantity, item.Stock
	}
	if _, err := cart.ClampQuantity(held+1, stock); err != nil {
		a.lc.toasts.Error(stockMessage(p.Title, stock))
		return a.store.Snapshot(), err
	}

	a.limiter.TryAdd(p.ID, now)
	state := a.store.AddItem(ctx, p)
	a.lc.toasts.Success(fmt.Sprintf("%s added to cart", p.Title))
	a.disable(p.ID)
	return state, nil
}

func (a *adder) disable(id catalog.ProductID) {
	if task, ok := a.disabled[id]; ok {
		task.Cancel()
	}
	a.disabled[id] = a.lc.after(a.limiter.Window(), func() {
		delete(a.disabled, id)
	})
}

func (a *adder) isDisabled(id catalog.ProductID) bool {
	_, ok := a.disabled[id]
	return ok
}

func (a *adder) disabledIDs() []catalog.ProductID {
	ids := make([]catalog.ProductID, 0, len(a.disabled))
	for id := range a.disabled {
		ids = append(ids, id)
	}
	return ids
}
