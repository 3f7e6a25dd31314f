package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/internal/view"
	"github.com/abgdnv/shopease/pkg/deferred"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Settings struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Cooldown      time.Duration
	ToastDuration time.Duration
	// AfterFunc schedules view callbacks, deferred.RealTime when nil.
	AfterFunc deferred.AfterFunc
}

// Manager owns the live sessions. Sessions idle for longer than the TTL are
// disposed by Sweep; their carts stay in storage and are reloaded when the
// shopper comes back.
type Manager struct {
	carts     *cart.Repository
	source    view.ProductSource
	submitter view.Submitter
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
	active    metric.Int64UpDownCounter

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(carts *cart.Repository, source view.ProductSource, submitter view.Submitter, settings Settings, logger *slog.Logger) *Manager {
	if settings.AfterFunc == nil {
		settings.AfterFunc = deferred.RealTime
	}
	meter := otel.Meter("storefront")
	active, err := meter.Int64UpDownCounter("sessions_active", metric.WithDescription("Number of live storefront sessions"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sessions_active counter: %v", err))
	}
	return &Manager{
		carts:     carts,
		source:    source,
		submitter: submitter,
		settings:  settings,
		logger:    logger.With("component", "session"),
		now:       time.Now,
		active:    active,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the live session id, or ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", storeerrors.ErrSessionNotFound, id)
	}
	return s, nil
}

// GetOrCreate returns the live session id. An unknown id reopens the cart
// stored under it; an empty or malformed id starts a new session.
// created reports whether a session was started.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	if s, ok := m.lookup(id); ok {
		return s, false
	}

	// the stored cart is read without holding the lock
	store := m.carts.Open(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		// a concurrent request opened the session first, its store wins
		s.lastSeen = m.now()
		return s, false
	}
	s = newSession(id, store, m, m.now())
	m.sessions[id] = s
	m.active.Add(ctx, 1)
	m.logger.DebugContext(ctx, "Session started", "session_id", id, "items", store.TotalItems())
	return s, true
}

func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = m.now()
	}
	return s, ok
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep disposes the sessions not seen since now minus the TTL and returns how many.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.settings.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Do(s.dispose)
	}
	if len(expired) > 0 {
		m.active.Add(ctx, -int64(len(expired)))
		m.logger.InfoContext(ctx, "Expired sessions disposed", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every SweepInterval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.settings.SweepInterval)
	defer ticker.Stop()
	m.logger.InfoContext(ctx, "Session sweeper started", "ttl", m.settings.TTL, "interval", m.settings.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "Session sweeper stopped")
			return nil
		case <-ticker.C:
			m.Sweep(ctx, m.now())
		}
	}
}

// Close disposes every live session.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	clear(m.sessions)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Do(s.dispose)
	}
	m.active.Add(ctx, -int64(len(sessions)))
}
