package view

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/notify"
	"github.com/abgdnv/shopease/pkg/deferred"
	"github.com/abgdnv/shopease/pkg/kv"
	"github.com/shopspring/decimal"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	epoch         = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// fakeSource serves products from memory. When release is set ListProducts
// closes started and blocks until release is closed.
type fakeSource struct {
	products []catalog.Product
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (s *fakeSource) ListProducts(context.Context) ([]catalog.Product, error) {
	if s.release != nil {
		close(s.started)
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.products), nil
}

func (s *fakeSource) GetProduct(_ context.Context, id catalog.ProductID) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, storeerrors.ErrProductNotFound
}

func product(id string, stock int) catalog.Product {
	return catalog.Product{
		ID:       catalog.ProductID(id),
		Title:    "Product " + id,
		Price:    decimal.NewFromInt(10),
		Stock:    stock,
		Category: "beauty",
	}
}

func newStore(t *testing.T) *cart.Store {
	t.Helper()
	return cart.NewRepository(kv.NewMemory(), time.Second, discardLogger).Open(context.Background(), "s1")
}

func newOptions(clock *deferred.ManualClock) Options {
	return Options{
		AfterFunc:     clock.AfterFunc,
		Cooldown:      5 * time.Second,
		ToastDuration: 3 * time.Second,
	}
}

func messages(toasts []notify.Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.Message)
	}
	return out
}

func quantity(store CartStore, id catalog.ProductID) int {
	item, _ := store.Item(id)
	return item.Quantity
}
