package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/shopease/internal/catalog"
	"github.com/abgdnv/shopease/pkg/kv"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StorageKey is the durable storage key of a session's cart.
func StorageKey(sessionID string) string {
	return "cartItems:" + sessionID
}

// Repository opens carts backed by a key-value store.
type Repository struct {
	kv        kv.Store
	timeout   time.Duration
	logger    *slog.Logger
	mutations metric.Int64Counter
}

// NewRepository creates a Repository. timeout bounds every storage call.
func NewRepository(store kv.Store, timeout time.Duration, logger *slog.Logger) *Repository {
	meter := otel.Meter("storefront")
	mutations, err := meter.Int64Counter("cart_mutations", metric.WithDescription("Total number of cart mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_mutations counter: %v", err))
	}
	return &Repository{
		kv:        store,
		timeout:   timeout,
		logger:    logger.With("component", "cart"),
		mutations: mutations,
	}
}

// Open loads the cart of sessionID. A missing or corrupt value yields an
// empty cart. When storage cannot be read the store starts empty and
// unloaded: the load is retried before the next mutation, and nothing is
// written until a load succeeds, so the stored cart is never overwritten.
func (r *Repository) Open(ctx context.Context, sessionID string) *Store {
	s := &Store{
		repo:   r,
		key:    StorageKey(sessionID),
		logger: r.logger.With("session_id", sessionID),
	}
	s.reload(ctx)
	return s
}

// Store is the cart of one session. It is not safe for concurrent use,
// callers serialise access per session.
//
// Every mutation is applied in memory first, then persisted. A failed write
// is logged and the in-memory state is kept.
type Store struct {
	repo   *Repository
	key    string
	state  State
	loaded bool
	logger *slog.Logger
}

// AddItem increments the product's line or inserts it with quantity 1.
// Stock is not checked here, see ClampQuantity.
func (s *Store) AddItem(ctx context.Context, p catalog.Product) State {
	return s.mutate(ctx, Add{Product: p})
}

// RemoveItem deletes the product's line. Absent ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id catalog.ProductID) State {
	return s.mutate(ctx, Remove{ProductID: id})
}

// SetQuantity stores exactly quantity. quantity <= 0 removes the line.
func (s *Store) SetQuantity(ctx context.Context, id catalog.ProductID, quantity int) State {
	return s.mutate(ctx, SetQuantity{ProductID: id, Quantity: quantity})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) State {
	return s.mutate(ctx, Clear{})
}

func (s *Store) Snapshot() State { return s.state }

// Loaded reports whether the stored cart has been read.
func (s *Store) Loaded() bool { return s.loaded }

func (s *Store) Items() []LineItem { return s.state.Items() }

func (s *Store) Item(id catalog.ProductID) (LineItem, bool) { return s.state.Item(id) }

func (s *Store) TotalItems() int { return s.state.TotalItems() }

func (s *Store) TotalPrice() decimal.Decimal { return s.state.TotalPrice() }

func (s *Store) mutate(ctx context.Context, op Operation) State {
	if !s.loaded {
		s.reload(ctx)
	}
	s.state = Apply(s.state, op)
	s.repo.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op.Name())))
	if !s.loaded {
		s.logger.WarnContext(ctx, "Stored cart unavailable, change kept in memory only", "op", op.Name())
		return s.state
	}
	s.persist(ctx, op)
	return s.state
}

func (s *Store) persist(ctx context.Context, op Operation) {
	data, err := Encode(s.state)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode cart", "op", op.Name(), "error", err)
		return
	}
	// the write outlives a caller that gave up, the in-memory state already changed
	ctx, cancel := s.repo.withTimeout(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.repo.kv.Set(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist cart", "op", op.Name(), "error", err)
		return
	}
	s.logger.DebugContext(ctx, "Cart persisted", "op", op.Name(), "items", s.state.Len())
}

// reload replaces the state with the stored cart when storage answers.
func (s *Store) reload(ctx context.Context) {
	state, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read stored cart", "error", err)
		return
	}
	s.state, s.loaded = state, true
}

// load reads the stored cart. Absent and corrupt values are an empty cart,
// only a failing read is an error.
func (s *Store) load(ctx context.Context) (State, error) {
	// a caller that gave up must not turn into a lost cart
	ctx, cancel := s.repo.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	data, err := s.repo.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.DebugContext(ctx, "No stored cart, starting empty")
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	state, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored cart is corrupt, starting empty", "error", err)
		return State{}, nil
	}
	return state, nil
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
