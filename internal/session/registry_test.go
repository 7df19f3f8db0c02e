package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsSameSession(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))

	a, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	b, err := r.Get(ctx, "abc")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))
	book := models.Book{ID: 1, Price: decimal.NewFromInt(10)}

	a, _ := r.Get(ctx, "a")
	b, _ := r.Get(ctx, "b")
	a.Cart.Add(ctx, book, 1)
	a.Wishlist.Add(ctx, book)

	assert.Empty(t, b.Cart.Items())
	assert.Empty(t, b.Wishlist.Items())
}

func TestEvictedSessionRehydrates(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	r := NewRegistry(kvstore.NewStore(backend))

	s, _ := r.Get(ctx, "shopper")
	s.Cart.Add(ctx, models.Book{ID: 4, Price: decimal.NewFromInt(10)}, 3)
	s.Cart.SetOpen(true)
	r.Evict("shopper")

	again, err := r.Get(ctx, "shopper")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, 3, again.Cart.ItemCount())
	assert.False(t, again.Cart.IsOpen())

	_, err = backend.Get(ctx, "session:shopper:cartItems")
	assert.NoError(t, err)
}

func TestNewMintsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))

	a := r.New(ctx)
	b := r.New(ctx)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
}

func TestInvalidIDs(t *testing.T) {
	r := NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))

	for _, id := range []string{"", "a:b", "has space"} {
		_, err := r.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
}

func TestEvictIdleDropsStaleSessions(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	r := NewRegistry(kvstore.NewStore(backend))
	clock := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	stale, _ := r.Get(ctx, "stale")
	stale.Cart.Add(ctx, models.Book{ID: 1, Price: decimal.NewFromInt(10)}, 2)
	for i := 0; i < 100; i++ {
		_, _ = r.Get(ctx, fmt.Sprintf("visitor-%d", i))
	}

	clock = clock.Add(45 * time.Minute)
	_, _ = r.Get(ctx, "fresh")

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 101, r.EvictIdle(time.Hour))
	assert.Equal(t, 1, r.Len())

	again, err := r.Get(ctx, "stale")
	require.NoError(t, err)
	assert.NotSame(t, stale, again)
	assert.Equal(t, 2, again.Cart.ItemCount())
}

func TestRunEvictionStopsOnCancel(t *testing.T) {
	r := NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))
	_, _ = r.Get(context.Background(), "a")
	r.mu.Lock()
	r.lastSeen["a"] = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunEviction(ctx, time.Minute, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestIdleTimeout(t *testing.T) {
	assert.Equal(t, DefaultIdleTimeout, IdleTimeout(0))
	assert.Equal(t, 24*time.Hour, IdleTimeout(24*time.Hour))
}
