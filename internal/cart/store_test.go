package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/abgdnv/shopease/pkg/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockKV is a testify mock of kv.Store.
type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockKV) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func Test_Store_Scenario(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory(), 0, discardLogger)
	store := repo.Open(ctx, "s1")
	p := product("1", "10", 2)

	// when
	store.AddItem(ctx, p)
	state := store.AddItem(ctx, p)

	// then
	require.Equal(t, 1, state.Len())
	item, _ := store.Item("1")
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.NewFromInt(20).Equal(store.TotalPrice()))

	// the caller clamps 5 to the stock of 2
	q, err := ClampQuantity(5, item.Stock)
	require.Error(t, err)
	store.SetQuantity(ctx, "1", q)
	item, _ = store.Item("1")
	assert.Equal(t, 2, item.Quantity)

	state = store.RemoveItem(ctx, "1")
	assert.True(t, state.IsEmpty())
	assert.True(t, decimal.Zero.Equal(store.TotalPrice()))
	assert.Zero(t, store.TotalItems())
}

func Test_Store_PersistsEveryMutation(t *testing.T) {
	// given
	ctx := context.Background()
	backend := kv.NewMemory()
	repo := NewRepository(backend, 0, discardLogger)
	store := repo.Open(ctx, "s1")

	// when
	store.AddItem(ctx, product("1", "3.50", 5))
	store.AddItem(ctx, product("2", "1", 5))
	store.SetQuantity(ctx, "1", 4)

	// then
	reloaded := repo.Open(ctx, "s1")
	assert.True(t, store.Snapshot().Equal(reloaded.Snapshot()))
	assert.Equal(t, 5, reloaded.TotalItems())

	other := repo.Open(ctx, "s2")
	assert.True(t, other.Snapshot().IsEmpty(), "carts are per session")

	store.Clear(ctx)
	data, err := backend.Get(ctx, StorageKey("s1"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func Test_Store_LoadDegradesToEmpty(t *testing.T) {
	testCases := []struct {
		name   string
		stored []byte
		getErr error
	}{
		{name: "absent", getErr: kv.ErrNotFound},
		{name: "corrupt", stored: []byte(`not json`)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			backend := &mockKV{}
			backend.On("Get", mock.Anything, "cartItems:s1").Return(tc.stored, tc.getErr)
			repo := NewRepository(backend, 0, discardLogger)

			// when
			store := repo.Open(context.Background(), "s1")

			// then
			assert.True(t, store.Snapshot().IsEmpty())
			assert.True(t, store.Loaded())
			backend.AssertExpectations(t)
		})
	}
}

func Test_Store_WriteFailureKeepsState(t *testing.T) {
	// given
	ctx := context.Background()
	backend := &mockKV{}
	backend.On("Get", mock.Anything, "cartItems:s1").Return(nil, kv.ErrNotFound)
	backend.On("Set", mock.Anything, "cartItems:s1", mock.Anything).Return(errors.New("disk full"))
	store := NewRepository(backend, 0, discardLogger).Open(ctx, "s1")

	// when
	state := store.AddItem(ctx, product("1", "1", 1))

	// then
	assert.Equal(t, 1, state.Len())
	backend.AssertNumberOfCalls(t, "Set", 1)
}

func Test_Store_PersistsAfterCanceledRequest(t *testing.T) {
	// given
	backend := kv.NewMemory()
	repo := NewRepository(backend, 0, discardLogger)
	store := repo.Open(context.Background(), "s1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	store.AddItem(ctx, product("1", "1", 1))

	// then
	_, err := backend.Get(context.Background(), StorageKey("s1"))
	assert.NoError(t, err)
}

func storedCart(t *testing.T) []byte {
	t.Helper()
	p := product("1", "10", 5)
	data, err := Encode(Apply(Apply(State{}, Add{Product: p}), Add{Product: p}))
	require.NoError(t, err)
	return data
}

func Test_Store_ReadFailureNeverOverwrites(t *testing.T) {
	// given
	ctx := context.Background()
	backend := &mockKV{}
	backend.On("Get", mock.Anything, "cartItems:s1").Return(nil, errors.New("connection refused"))
	store := NewRepository(backend, 0, discardLogger).Open(ctx, "s1")

	// when
	state := store.AddItem(ctx, product("2", "3", 5))

	// then
	assert.False(t, store.Loaded())
	assert.Equal(t, 1, state.Len())
	backend.AssertNumberOfCalls(t, "Get", 2)
	backend.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Store_ReadFailureRetriedBeforeWrite(t *testing.T) {
	// given
	ctx := context.Background()
	backend := &mockKV{}
	backend.On("Get", mock.Anything, "cartItems:s1").Return(nil, errors.New("i/o timeout")).Once()
	backend.On("Get", mock.Anything, "cartItems:s1").Return(storedCart(t), nil).Once()
	backend.On("Set", mock.Anything, "cartItems:s1", mock.Anything).Return(nil)
	store := NewRepository(backend, 0, discardLogger).Open(ctx, "s1")
	require.False(t, store.Loaded())

	// when
	state := store.AddItem(ctx, product("2", "3", 5))

	// then
	assert.True(t, store.Loaded())
	require.Equal(t, 2, state.Len())
	item, _ := state.Item("1")
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.NewFromInt(23).Equal(state.TotalPrice()))
	backend.AssertNumberOfCalls(t, "Set", 1)
}

func Test_Store_LoadOutlivesCanceledRequest(t *testing.T) {
	// given
	backend := &mockKV{}
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	backend.On("Get", live, "cartItems:s1").Return(storedCart(t), nil)
	backend.On("Set", mock.Anything, "cartItems:s1", mock.Anything).Return(nil)
	repo := NewRepository(backend, 0, discardLogger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	store := repo.Open(ctx, "s1")
	state := store.AddItem(ctx, product("2", "3", 5))

	// then
	assert.True(t, store.Loaded())
	assert.Equal(t, 3, state.TotalItems())
	backend.AssertExpectations(t)
}
