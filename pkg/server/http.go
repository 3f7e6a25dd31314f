// Package server builds the HTTP servers and routers run by the binaries.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/shopease/pkg/config"
	"github.com/abgdnv/shopease/pkg/metrics"
	"github.com/abgdnv/shopease/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// untraced paths are served without a span.
var untraced = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// NewHTTPServer serves handler with the limits of cfg. Requests are traced
// under operation name.
func NewHTTPServer(cfg config.HTTPConfig, name string, handler http.Handler) *http.Server {
	traced := otelhttp.NewHandler(handler, name,
		otelhttp.WithFilter(func(r *http.Request) bool { return !untraced[r.URL.Path] }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           traced,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter returns a router logging every request and recovering panics.
// m may be nil, in which case no request metrics are recorded.
func NewChiRouter(logger *slog.Logger, m *metrics.ServerMetrics) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, web.RequestIDInjector, web.StructuredLogger(logger))
	if m != nil {
		mux.Use(m.Middleware)
	}
	mux.Use(web.Recoverer(logger))
	return mux
}

// Serve runs srv until ctx is done, then shuts it down within timeout.
// A server closed by the shutdown is not an error.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server %s failed: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server", slog.String("addr", srv.Addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server %s: %w", srv.Addr, err)
	}
	return nil
}
