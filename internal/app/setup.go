// Package app wires the storefront: catalog client, cart storage, sessions and the HTTP API.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	"github.com/abgdnv/shopease/internal/config"
	"github.com/abgdnv/shopease/internal/handoff"
	"github.com/abgdnv/shopease/internal/session"
	"github.com/abgdnv/shopease/internal/transport/rest"
	"github.com/abgdnv/shopease/pkg/kv"
	"github.com/abgdnv/shopease/pkg/messaging"
	"github.com/abgdnv/shopease/pkg/metrics"
	"github.com/abgdnv/shopease/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type Dependencies struct {
	Sessions *session.Manager
	Storage  kv.Store
	Cookie   rest.CookieSettings
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// SetupDependencies builds the storefront from its infrastructure.
// publisher may be nil when no broker is configured. reg may be nil, then
// no request metrics are recorded and /metrics is not served.
func SetupDependencies(cfg *config.Config, storage kv.Store, publisher messaging.Publisher, reg *prometheus.Registry, logger *slog.Logger) (*Dependencies, error) {
	client, err := catalog.NewClient(catalog.Settings{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
		Limit:   cfg.Catalog.Limit,
		Breaker: cfg.CircuitBreaker,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	handoffs := handoff.NewService(handoff.Settings{
		RequiredFields: cfg.Checkout.RequiredFieldList(),
		Recipient:      cfg.Checkout.Recipient,
		BaseURL:        cfg.Checkout.BaseURL,
		RedirectDelay:  cfg.Checkout.RedirectDelay,
	}, handoff.ClientOpener{Logger: logger}, publisher, logger)

	sessions := session.NewManager(
		cart.NewRepository(storage, cfg.Storage.Timeout, logger),
		client,
		handoffs,
		session.Settings{
			TTL:           cfg.Session.TTL,
			SweepInterval: cfg.Session.SweepInterval,
			Cooldown:      cfg.Cart.Cooldown,
			ToastDuration: cfg.Cart.ToastDuration,
		},
		logger,
	)

	deps := &Dependencies{
		Sessions: sessions,
		Storage:  storage,
		Cookie:   rest.CookieSettings{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL},
		Logger:   logger,
	}
	if reg != nil {
		deps.Metrics = metrics.NewServerMetrics("storefront", reg)
		deps.Gatherer = reg
	}
	return deps, nil
}

// SetupHttpHandler initializes the router and routes of the storefront.
// Used by tests to get the handler without a listening server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, deps.Metrics)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes of the storefront.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Sessions, deps.Cookie, deps.Storage, deps.Logger)
	handler.RegisterRoutes(mux)
	if deps.Gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}
}

// SetupHttpServer creates and configures the storefront HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	return server.NewHTTPServer(cfg.HTTPServer, "storefront", mux)
}
