// Package session keeps one storefront session per shopper: the cart store,
// the four page views and the current route, behind a single lock.
package session

import (
	"sync"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/notify"
	"github.com/abgdnv/shopease/internal/view"
)

// Session is one shopper. Do serialises every operation on the session,
// deferred view callbacks included.
type Session struct {
	id string
	mu sync.Mutex

	store    *cart.Store
	listing  *view.Listing
	detail   *view.Detail
	cart     *view.CartView
	checkout *view.Checkout

	route    string
	lastSeen time.Time
	disposed bool
}

func newSession(id string, store *cart.Store, m *Manager, now time.Time) *Session {
	s := &Session{id: id, store: store, route: view.RouteCatalog, lastSeen: now}
	opts := view.Options{
		Run:           s.Do,
		AfterFunc:     m.settings.AfterFunc,
		Cooldown:      m.settings.Cooldown,
		ToastDuration: m.settings.ToastDuration,
		// called from a deferred callback, the lock is already held
		Navigate: func(route string) { s.route = route },
	}
	s.listing = view.NewListing(m.source, store, opts)
	s.detail = view.NewDetail(m.source, store, opts)
	s.cart = view.NewCartView(store, opts)
	s.checkout = view.NewCheckout(id, store, m.submitter, opts)
	return s
}

func (s *Session) ID() string { return s.id }

// Do runs fn holding the session lock. It must not be called from fn.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// The view accessors may be called without the lock, the views themselves
// are only used inside Do, except Load.

func (s *Session) Listing() *view.Listing { return s.listing }

func (s *Session) Detail() *view.Detail { return s.detail }

func (s *Session) CartView() *view.CartView { return s.cart }

func (s *Session) Checkout() *view.Checkout { return s.checkout }

// Cart is the session's cart store. Callers hold the lock.
func (s *Session) Cart() *cart.Store { return s.store }

// Route is the page the shopper is on. Callers hold the lock.
func (s *Session) Route() string { return s.route }

// Navigate records the page the shopper moved to. Callers hold the lock.
func (s *Session) Navigate(route string) { s.route = route }

// Disposed reports whether the session expired. Callers hold the lock.
func (s *Session) Disposed() bool { return s.disposed }

// Toasts collects the visible toasts of every view. Callers hold the lock.
func (s *Session) Toasts() []notify.Toast {
	toasts := []notify.Toast{}
	toasts = append(toasts, s.listing.Toasts()...)
	toasts = append(toasts, s.detail.Toasts()...)
	toasts = append(toasts, s.cart.Toasts()...)
	toasts = append(toasts, s.checkout.Toasts()...)
	return toasts
}

// DismissToast removes the toast with id from whichever view raised it.
// Callers hold the lock.
func (s *Session) DismissToast(id string) bool {
	return s.listing.DismissToast(id) || s.detail.DismissToast(id) ||
		s.cart.DismissToast(id) || s.checkout.DismissToast(id)
}

// dispose cancels every pending view task. Callers hold the lock.
func (s *Session) dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.listing.Dispose()
	s.detail.Dispose()
	s.cart.Dispose()
	s.checkout.Dispose()
}
