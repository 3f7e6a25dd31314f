package view

import (
	"context"
	"testing"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/notify"
	"github.com/abgdnv/shopease/pkg/deferred"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CartView_Quantities(t *testing.T) {
	// given
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	store := newStore(t)
	store.AddItem(ctx, product("1", 2))
	store.AddItem(ctx, product("2", 5))
	c := NewCartView(store, newOptions(clock))

	// when
	summary, err := c.Increment(ctx, "1")

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalItems)
	assert.True(t, decimal.NewFromInt(30).Equal(summary.TotalPrice))

	// when the stock is exhausted
	summary, err = c.Increment(ctx, "1")

	// then
	assert.ErrorIs(t, err, storeerrors.ErrOverStock)
	assert.Equal(t, 2, quantity(store, "1"))
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, []string{"Only 2 of Product 1 in stock"}, messages(c.Toasts()))

	// when
	_, err = c.SetQuantity(ctx, "2", 6)

	// then
	assert.ErrorIs(t, err, storeerrors.ErrOverStock)
	assert.Equal(t, 1, quantity(store, "2"))

	// when
	summary, err = c.SetQuantity(ctx, "2", 5)

	// then
	require.NoError(t, err)
	assert.Equal(t, 5, quantity(store, "2"))
	assert.Equal(t, 7, summary.TotalItems)
}

func Test_CartView_DecrementRemovesAtZero(t *testing.T) {
	// given
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	store := newStore(t)
	store.AddItem(ctx, product("1", 2))
	c := NewCartView(store, newOptions(clock))

	// when
	summary, err := c.Decrement(ctx, "1")

	// then
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.TotalItems)
	assert.True(t, summary.TotalPrice.IsZero())
	assert.Empty(t, c.Toasts())
}

func Test_CartView_RemoveAndClear(t *testing.T) {
	// given
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	store := newStore(t)
	store.AddItem(ctx, product("1", 2))
	store.AddItem(ctx, product("2", 2))
	c := NewCartView(store, newOptions(clock))

	// when
	summary, err := c.Remove(ctx, "1")

	// then
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "2", summary.Items[0].ProductID.String())

	// when
	summary = c.Clear(ctx)

	// then
	assert.Empty(t, summary.Items)
	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "Product 1 removed from cart", toasts[0].Message)
	assert.Equal(t, notify.SeveritySuccess, toasts[0].Severity)
	assert.Equal(t, notify.SeverityInfo, toasts[1].Severity)
}

func Test_CartView_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	c := NewCartView(newStore(t), newOptions(clock))

	testCases := []struct {
		name string
		op   func() (Summary, error)
	}{
		{name: "increment", op: func() (Summary, error) { return c.Increment(ctx, "9") }},
		{name: "decrement", op: func() (Summary, error) { return c.Decrement(ctx, "9") }},
		{name: "set quantity", op: func() (Summary, error) { return c.SetQuantity(ctx, "9", 2) }},
		{name: "remove", op: func() (Summary, error) { return c.Remove(ctx, "9") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			summary, err := tc.op()

			// then
			assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
			assert.Empty(t, summary.Items)
		})
	}
	assert.Empty(t, c.Toasts())
}
