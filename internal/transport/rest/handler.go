// Package rest exposes the storefront views over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/handoff"
	"github.com/abgdnv/shopease/internal/session"
	"github.com/abgdnv/shopease/internal/view"
	"github.com/abgdnv/shopease/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Pinger reports whether the cart storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CookieSettings struct {
	Name string
	TTL  time.Duration
}

type Handler struct {
	sessions SessionManager
	cookie   CookieSettings
	storage  Pinger
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates the storefront API handler.
func NewHandler(sessions SessionManager, cookie CookieSettings, storage Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		cookie:   cookie,
		storage:  storage,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		now:      time.Now,
	}
}

// RegisterRoutes registers the storefront routes and the probes.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(SessionCookie(h.sessions, h.cookie.Name, h.cookie.TTL))
		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Get("/{id}", h.GetProduct)
				r.Post("/{id}/add", h.AddFromListing)
				r.Post("/{id}/detail/add", h.AddFromDetail)
			})
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Route("/items/{id}", func(r chi.Router) {
					r.Put("/", h.SetQuantity)
					r.Delete("/", h.RemoveItem)
					r.Post("/increment", h.Increment)
					r.Post("/decrement", h.Decrement)
				})
			})
			r.Get("/checkout", h.GetCheckout)
			r.Post("/checkout", h.Checkout)
			r.Get("/session", h.GetSession)
			r.Delete("/session/toasts/{toastID}", h.DismissToast)
		})
	})
	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadyCheck)
}

// ListProducts reloads the listing and returns it filtered by q and category.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	listing := s.Listing()
	if err := listing.Load(r.Context()); err != nil {
		h.respondCatalogError(w, r, mLogger, err)
		return
	}

	query, category := r.URL.Query().Get("q"), r.URL.Query().Get("category")
	var dto ListingDto
	s.Do(func() {
		s.Navigate(view.RouteCatalog)
		dto = ListingDto{
			Products:    listing.Products(query, category),
			Categories:  listing.Categories(),
			DisabledIDs: listing.DisabledIDs(),
		}
	})
	mLogger.DebugContext(r.Context(), "Listing served", "count", len(dto.Products), "q", query, "category", category)
	web.RespondJSON(w, mLogger, http.StatusOK, dto)
}

// AddFromListing adds one unit from the listing page.
func (h *Handler) AddFromListing(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := parseProductID(w, r, mLogger)
	if !ok {
		return
	}
	listing := s.Listing()
	var loaded bool
	s.Do(func() { loaded = listing.Loaded() && listing.LoadErr() == nil })
	if !loaded {
		if err := listing.Load(r.Context()); err != nil {
			h.respondCatalogError(w, r, mLogger, err)
			return
		}
	}

	var (
		state cart.State
		err   error
	)
	s.Do(func() { state, err = listing.Add(r.Context(), id, h.now()) })
	h.respondAdd(w, r, mLogger, id, state, err)
}

// GetProduct loads the detail page of id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := parseProductID(w, r, mLogger)
	if !ok {
		return
	}
	detail := s.Detail()
	if err := detail.Load(r.Context(), id); err != nil {
		h.respondCatalogError(w, r, mLogger, err)
		return
	}

	var dto DetailDto
	s.Do(func() {
		s.Navigate(view.ProductRoute(id))
		dto = DetailDto{Product: detail.Product(), Disabled: detail.Disabled()}
	})
	web.RespondJSON(w, mLogger, http.StatusOK, dto)
}

// AddFromDetail adds one unit from the detail page, loading it first if needed.
func (h *Handler) AddFromDetail(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := parseProductID(w, r, mLogger)
	if !ok {
		return
	}
	detail := s.Detail()
	var loaded bool
	s.Do(func() { loaded = detail.ProductID() == id && detail.Product() != nil })
	if !loaded {
		if err := detail.Load(r.Context(), id); err != nil {
			h.respondCatalogError(w, r, mLogger, err)
			return
		}
	}

	var (
		state cart.State
		err   error
	)
	s.Do(func() { state, err = detail.Add(r.Context(), h.now()) })
	h.respondAdd(w, r, mLogger, id, state, err)
}

// GetCart returns the cart with its totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	var summary view.Summary
	s.Do(func() {
		s.Navigate(view.RouteCart)
		summary = s.CartView().Summary()
	})
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(summary))
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.updateItem(w, r, func(ctx context.Context, c *view.CartView, id catalog.ProductID) (view.Summary, error) {
		return c.Increment(ctx, id)
	})
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.updateItem(w, r, func(ctx context.Context, c *view.CartView, id catalog.ProductID) (view.Summary, error) {
		return c.Decrement(ctx, id)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.updateItem(w, r, func(ctx context.Context, c *view.CartView, id catalog.ProductID) (view.Summary, error) {
		return c.Remove(ctx, id)
	})
}

// SetQuantity replaces a line's quantity from a {"quantity": n} body, 0 removes the line.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto QuantityDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		if fields, ok := web.ValidationFields(err); ok {
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
			web.RespondValidation(w, mLogger, fields)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.updateItem(w, r, func(ctx context.Context, c *view.CartView, id catalog.ProductID) (view.Summary, error) {
		return c.SetQuantity(ctx, id, *dto.Quantity)
	})
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	var summary view.Summary
	s.Do(func() { summary = s.CartView().Clear(r.Context()) })
	mLogger.InfoContext(r.Context(), "Cart cleared")
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(summary))
}

// GetCheckout returns the cart being checked out and the completion state.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	var dto CheckoutDto
	s.Do(func() {
		checkout := s.Checkout()
		if !checkout.Complete() {
			s.Navigate(view.RouteCheckout)
		}
		dto = CheckoutDto{
			Cart:     toCartDto(checkout.Summary()),
			Complete: checkout.Complete(),
			Receipt:  toReceiptDto(checkout.Receipt()),
		}
	})
	web.RespondJSON(w, mLogger, http.StatusOK, dto)
}

// Checkout hands the order off and returns the deep link to open.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	var form handoff.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		receipt *handoff.Receipt
		err     error
	)
	s.Do(func() {
		s.Navigate(view.RouteCheckout)
		receipt, err = s.Checkout().Submit(r.Context(), form)
	})
	if err != nil {
		var validationErr *handoff.ValidationError
		switch {
		case errors.Is(err, storeerrors.ErrEmptyCart):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
		case errors.As(err, &validationErr):
			web.RespondValidation(w, mLogger, validationErr.Fields)
		default:
			mLogger.ErrorContext(r.Context(), "Error handing off order", "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to hand off order")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order handed off", slog.String("order_id", receipt.OrderID.String()))
	web.RespondJSON(w, mLogger, http.StatusOK, toReceiptDto(receipt))
}

// GetSession returns the current route and the visible toasts.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	var dto SessionDto
	s.Do(func() {
		dto = SessionDto{ID: s.ID(), Route: s.Route(), Toasts: s.Toasts()}
	})
	web.RespondJSON(w, mLogger, http.StatusOK, dto)
}

// DismissToast closes a toast before it expires.
func (h *Handler) DismissToast(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	toastID := chi.URLParam(r, "toastID")
	var dismissed bool
	s.Do(func() { dismissed = s.DismissToast(toastID) })
	if !dismissed {
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Toast %s not found", toastID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyCheck reports whether the cart storage answers.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.storage.Ping(ctx); err != nil {
		h.loggerWithReqID(r).WarnContext(ctx, "Storage is not ready", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type itemUpdate func(ctx context.Context, c *view.CartView, id catalog.ProductID) (view.Summary, error)

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, update itemUpdate) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.session(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := parseProductID(w, r, mLogger)
	if !ok {
		return
	}
	var (
		summary view.Summary
		err     error
	)
	s.Do(func() { summary, err = update(r.Context(), s.CartView(), id) })
	switch {
	case errors.Is(err, storeerrors.ErrProductNotFound):
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s is not in the cart", id))
	case errors.Is(err, storeerrors.ErrOverStock):
		mLogger.WarnContext(r.Context(), "Quantity above stock rejected", "product_id", id, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	case err != nil:
		mLogger.ErrorContext(r.Context(), "Error updating cart", "product_id", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
	default:
		web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(summary))
	}
}

func (h *Handler) respondAdd(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id catalog.ProductID, state cart.State, err error) {
	var cooldownErr *view.CooldownError
	switch {
	case errors.As(err, &cooldownErr):
		secs := int(math.Ceil(cooldownErr.Remaining.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		web.RespondError(w, mLogger, http.StatusTooManyRequests, cooldownErr.Error())
	case errors.Is(err, storeerrors.ErrOverStock):
		mLogger.WarnContext(r.Context(), "Add above stock rejected", "product_id", id)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	case errors.Is(err, storeerrors.ErrProductNotFound):
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case err != nil:
		mLogger.ErrorContext(r.Context(), "Error adding to cart", "product_id", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add to cart")
	default:
		mLogger.InfoContext(r.Context(), "Product added to cart", "product_id", id)
		web.RespondJSON(w, mLogger, http.StatusOK, CartDto{
			Items:      state.Items(),
			TotalItems: state.TotalItems(),
			TotalPrice: state.TotalPrice(),
		})
	}
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storeerrors.ErrProductNotFound):
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	case errors.Is(err, view.ErrDisposed):
		// the session expired or a newer load won, the client retries
		web.RespondError(w, mLogger, http.StatusConflict, "Request superseded, please retry")
	default:
		mLogger.ErrorContext(r.Context(), "Error loading catalog", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to load products")
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (*session.Session, bool) {
	s, ok := sessionFrom(r.Context())
	if !ok {
		mLogger.ErrorContext(r.Context(), "Session missing from request context")
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Session unavailable")
		return nil, false
	}
	return s, true
}

func parseProductID(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (catalog.ProductID, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Product ID is required")
		return "", false
	}
	return catalog.ProductID(id), true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
