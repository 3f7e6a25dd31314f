package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes caps how much of a catalog response is read.
const maxBodyBytes = 8 << 20

// StatusError reports an unexpected HTTP status from the catalog. It matches ErrNetwork.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned status %d for %s", e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error { return storeerrors.ErrNetwork }

// Settings configures a Client.
type Settings struct {
	BaseURL string
	Timeout time.Duration
	// Limit is sent as ?limit= on listing requests when positive.
	Limit   int
	Breaker config.CircuitBreakerConfig
	// Transport defaults to http.DefaultTransport. It is always wrapped with otelhttp.
	Transport http.RoundTripper
}

// Client is the catalog HTTP client. It never caches and never retries.
type Client struct {
	baseURL *url.URL
	limit   int
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func NewClient(s Settings, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", s.BaseURL)
	}
	transport := s.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	c := &Client{
		baseURL: base,
		limit:   s.Limit,
		timeout: s.Timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(transport)},
		logger:  logger.With("component", "catalog"),
	}
	if s.Breaker.Enabled {
		c.breaker = newBreaker(s.Breaker, c.logger)
	}
	return c, nil
}

func newBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	st := gobreaker.Settings{
		Name:        "catalog-cb",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		// a missing product or a caller giving up says nothing about catalog health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, storeerrors.ErrProductNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// ListProducts fetches GET {base}/products.
// Fails with ErrNetwork or ErrDecode.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	query := url.Values{}
	if c.limit > 0 {
		query.Set("limit", strconv.Itoa(c.limit))
	}
	body, err := c.fetch(ctx, c.endpoint(query, "products"), false)
	if err != nil {
		return nil, err
	}

	var list productList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrDecode, err)
	}
	if list.Products == nil {
		return nil, fmt.Errorf("%w: response has no products field", storeerrors.ErrDecode)
	}
	for i := range list.Products {
		if err := list.Products[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", storeerrors.ErrDecode, err)
		}
	}
	return list.Products, nil
}

// GetProduct fetches GET {base}/products/{id}.
// Fails with ErrProductNotFound, ErrNetwork or ErrDecode.
func (c *Client) GetProduct(ctx context.Context, id ProductID) (*Product, error) {
	if id == "" {
		return nil, storeerrors.ErrProductNotFound
	}
	body, err := c.fetch(ctx, c.endpoint(nil, "products", string(id)), true)
	if err != nil {
		return nil, err
	}

	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrDecode, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrDecode, err)
	}
	return &p, nil
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) fetch(ctx context.Context, target string, notFoundIsMissing bool) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, target, notFoundIsMissing)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, target, notFoundIsMissing)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrNetwork, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string, notFoundIsMissing bool) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Calling catalog", "url", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound && notFoundIsMissing {
		return nil, storeerrors.ErrProductNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrNetwork, err)
	}
	return body, nil
}
