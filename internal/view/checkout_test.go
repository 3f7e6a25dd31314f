package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/shopease/internal/handoff"
	"github.com/abgdnv/shopease/pkg/deferred"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandoff(opener handoff.Opener) *handoff.Service {
	return handoff.NewService(handoff.Settings{
		Recipient:     "6280000000",
		BaseURL:       "https://wa.example.com/send",
		RedirectDelay: 5 * time.Second,
	}, opener, nil, discardLogger)
}

var validForm = handoff.ShippingForm{FullName: "Ana", Email: "ana@example.com", Address: "Main St 1"}

func Test_Checkout_SubmitRedirects(t *testing.T) {
	// given
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	store := newStore(t)
	store.AddItem(ctx, product("1", 2))
	var routes []string
	opts := newOptions(clock)
	opts.ToastDuration = 10 * time.Second
	opts.Navigate = func(route string) { routes = append(routes, route) }
	c := NewCheckout("s1", store, newHandoff(handoff.ClientOpener{}), opts)

	// when
	receipt, err := c.Submit(ctx, validForm)

	// then
	require.NoError(t, err)
	assert.Contains(t, receipt.Link, "https://wa.example.com/send?phone=6280000000&text=")
	assert.True(t, c.Complete())
	assert.Equal(t, receipt, c.Receipt())
	assert.True(t, store.Snapshot().IsEmpty())
	assert.Equal(t, []string{"You are being redirected to WhatsApp to complete your order"}, messages(c.Toasts()))

	// when the redirect delay elapses
	clock.Advance(5 * time.Second)

	// then
	assert.Equal(t, []string{RouteCatalog}, routes)
	assert.False(t, c.Complete())
	assert.Nil(t, c.Receipt())
}

func Test_Checkout_SubmitFailures(t *testing.T) {
	testCases := []struct {
		name    string
		fill    bool
		form    handoff.ShippingForm
		opener  handoff.Opener
		message string
	}{
		{
			name:    "empty cart",
			form:    validForm,
			opener:  handoff.ClientOpener{},
			message: "Your cart is empty",
		},
		{
			name:    "missing fields",
			fill:    true,
			form:    handoff.ShippingForm{FullName: "  ", Email: "ana@example.com"},
			opener:  handoff.ClientOpener{},
			message: "Please complete: address, fullName",
		},
		{
			name: "opener failure",
			fill: true,
			form: validForm,
			opener: handoff.OpenerFunc(func(context.Context, string) error {
				return errors.New("popup blocked")
			}),
			message: "Could not open the chat channel, please try again",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ctx := context.Background()
			clock := deferred.NewManualClock(epoch)
			store := newStore(t)
			if tc.fill {
				store.AddItem(ctx, product("1", 2))
			}
			navigated := false
			opts := newOptions(clock)
			opts.Navigate = func(string) { navigated = true }
			c := NewCheckout("s1", store, newHandoff(tc.opener), opts)

			// when
			receipt, err := c.Submit(ctx, tc.form)

			// then
			assert.Error(t, err)
			assert.Nil(t, receipt)
			assert.False(t, c.Complete())
			assert.Equal(t, []string{tc.message}, messages(c.Toasts()))
			assert.Equal(t, tc.fill, !store.Snapshot().IsEmpty())
			clock.Advance(time.Minute)
			assert.False(t, navigated)
		})
	}
}

func Test_Checkout_DisposeCancelsRedirect(t *testing.T) {
	// given
	ctx := context.Background()
	clock := deferred.NewManualClock(epoch)
	store := newStore(t)
	store.AddItem(ctx, product("1", 2))
	navigated := false
	opts := newOptions(clock)
	opts.Navigate = func(string) { navigated = true }
	c := NewCheckout("s1", store, newHandoff(handoff.ClientOpener{}), opts)
	_, err := c.Submit(ctx, validForm)
	require.NoError(t, err)

	// when
	c.Dispose()
	clock.Advance(time.Minute)

	// then
	assert.False(t, navigated)
}
