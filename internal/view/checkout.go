package view

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/handoff"
	"github.com/abgdnv/shopease/pkg/deferred"
)

// Submitter performs the order handoff. *handoff.Service implements it.
type Submitter interface {
	Submit(ctx context.Context, order handoff.Order) (*handoff.Receipt, error)
}

// Checkout is the checkout page. After a successful handoff it shows the
// completion state until the redirect back to the catalog fires.
type Checkout struct {
	lifecycle
	store     CartStore
	submitter Submitter
	sessionID string
	navigate  func(route string)

	complete bool
	receipt  *handoff.Receipt
	redirect *deferred.Task
}

func NewCheckout(sessionID string, store CartStore, submitter Submitter, opts Options) *Checkout {
	navigate := opts.Navigate
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Checkout{
		lifecycle: newLifecycle(opts),
		store:     store,
		submitter: submitter,
		sessionID: sessionID,
		navigate:  navigate,
	}
}

// Summary is the cart being checked out.
func (c *Checkout) Summary() Summary { return summarize(c.store.Snapshot()) }

// Complete reports whether an order was handed off and the redirect is pending.
func (c *Checkout) Complete() bool { return c.complete }

// Receipt is the last successful handoff while Complete is true.
func (c *Checkout) Receipt() *handoff.Receipt { return c.receipt }

// Submit hands the order off. Failures raise an error toast and leave the cart as it was.
func (c *Checkout) Submit(ctx context.Context, form handoff.ShippingForm) (*handoff.Receipt, error) {
	receipt, err := c.submitter.Submit(ctx, handoff.Order{
		SessionID: c.sessionID,
		Cart:      c.store,
		Form:      form,
		Redirect:  c.scheduleRedirect,
	})
	if err != nil {
		c.toasts.Error(submitMessage(err))
		return nil, err
	}
	c.complete = true
	c.receipt = receipt
	c.toasts.Success("You are being redirected to WhatsApp to complete your order")
	return receipt, nil
}

func (c *Checkout) scheduleRedirect(delay time.Duration) {
	if c.redirect != nil {
		c.redirect.Cancel()
	}
	c.redirect = c.after(delay, func() {
		c.complete = false
		c.receipt = nil
		c.redirect = nil
		c.navigate(RouteCatalog)
	})
}

func submitMessage(err error) string {
	var validationErr *handoff.ValidationError
	switch {
	case errors.Is(err, storeerrors.ErrEmptyCart):
		return "Your cart is empty"
	case errors.As(err, &validationErr):
		return "Please complete: " + strings.Join(slices.Sorted(maps.Keys(validationErr.Fields)), ", ")
	default:
		return "Could not open the chat channel, please try again"
	}
}
