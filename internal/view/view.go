// Package view holds the per-session view-models of the storefront pages:
// the product listing, a product detail, the cart and the checkout.
//
// Views are not safe for concurrent use. Callers serialise every method
// through the session, except Load which takes the session itself while it
// applies a catalog result. Deferred callbacks re-enter through the same
// Runner and are ignored once the view is disposed.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/notify"
	"github.com/abgdnv/shopease/pkg/deferred"
)

// Routes of the storefront.
const (
	RouteCatalog  = "/"
	RouteCart     = "/cart"
	RouteCheckout = "/checkout"
)

// ProductRoute is the detail route of id.
func ProductRoute(id catalog.ProductID) string {
	return "/product/" + id.String()
}

// ProductSource is the part of the catalog client the views read from.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id catalog.ProductID) (*catalog.Product, error)
}

// CooldownError rejects an add during the cooldown window. It matches ErrCooldown.
type CooldownError struct {
	ProductID catalog.ProductID
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("product %s can be added again in %s", e.ProductID, e.Remaining.Round(time.Millisecond))
}

func (e *CooldownError) Unwrap() error { return storeerrors.ErrCooldown }

// Options are shared by every view of a session.
type Options struct {
	// Run executes deferred callbacks in the session's serialised context.
	Run notify.Runner
	// AfterFunc schedules deferred callbacks, deferred.RealTime by default.
	AfterFunc     deferred.AfterFunc
	Cooldown      time.Duration
	ToastDuration time.Duration
	// Navigate is called when a view redirects, e.g. after checkout.
	Navigate func(route string)
}

// lifecycle is embedded by every view. It owns the view's deferred tasks and toasts.
type lifecycle struct {
	group    *deferred.Group
	toasts   *notify.Board
	run      notify.Runner
	disposed bool
}

func newLifecycle(opts Options) lifecycle {
	af := opts.AfterFunc
	if af == nil {
		af = deferred.RealTime
	}
	run := opts.Run
	if run == nil {
		run = func(fn func()) { fn() }
	}
	group := deferred.NewGroupWith(af)
	return lifecycle{
		group:  group,
		toasts: notify.NewBoard(group, opts.ToastDuration, run),
		run:    run,
	}
}

// after schedules fn in the serialised context, skipping it once disposed.
func (l *lifecycle) after(d time.Duration, fn func()) *deferred.Task {
	return l.group.After(d, func() {
		l.run(func() {
			if l.disposed {
				return
			}
			fn()
		})
	})
}

// Toasts returns the view's visible notifications.
func (l *lifecycle) Toasts() []notify.Toast { return l.toasts.Active() }

// DismissToast removes a notification before it expires.
func (l *lifecycle) DismissToast(id string) bool { return l.toasts.Dismiss(id) }

// Disposed reports whether Dispose was called.
func (l *lifecycle) Disposed() bool { return l.disposed }

// Dispose cancels every pending task of the view. It is idempotent.
func (l *lifecycle) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	l.group.Close()
	l.toasts.Clear()
}

func cooldownMessage(remaining time.Duration) string {
	secs := int((remaining + time.Second - 1) / time.Second)
	return fmt.Sprintf("Please wait %ds before adding the same product again", secs)
}

func stockMessage(title string, stock int) string {
	if stock <= 0 {
		return fmt.Sprintf("%s is out of stock", title)
	}
	return fmt.Sprintf("Only %d of %s in stock", stock, title)
}
