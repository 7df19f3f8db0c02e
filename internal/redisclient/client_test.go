package redisclient

import (
	"context"
	"testing"
	"time"

	"bookstore-service/internal/cart"
	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, ttl time.Duration) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(mr.Addr(), "", 0, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestGetSetDelete(t *testing.T) {
	client, mr := newTestClient(t, 0)
	ctx := context.Background()

	_, err := client.Get(ctx, "cartItems")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, client.Set(ctx, "cartItems", "[]"))
	val, err := client.Get(ctx, "cartItems")
	require.NoError(t, err)
	assert.Equal(t, "[]", val)
	assert.True(t, mr.Exists("bookstore:cartItems"))

	require.NoError(t, client.Delete(ctx, "cartItems"))
	assert.False(t, mr.Exists("bookstore:cartItems"))
}

func TestSetAppliesTTL(t *testing.T) {
	client, mr := newTestClient(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "wishlistItems", "[]"))

	assert.Equal(t, time.Hour, mr.TTL("bookstore:wishlistItems"))
	mr.FastForward(2 * time.Hour)
	_, err := client.Get(ctx, "wishlistItems")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestUnavailableRedisFallsBack(t *testing.T) {
	client, mr := newTestClient(t, 0)
	ctx := context.Background()
	store := kvstore.NewStore(client)

	mr.Close()

	val, outcome := kvstore.ReadOutcome(ctx, store, "cartItems", []models.LineItem{})
	assert.Empty(t, val)
	assert.Equal(t, kvstore.OutcomeUnavailable, outcome)
	assert.Error(t, kvstore.Write(ctx, store, "cartItems", []models.LineItem{}))
}

func TestCartRecoversFromCorruptRedisValue(t *testing.T) {
	client, mr := newTestClient(t, 0)
	ctx := context.Background()
	require.NoError(t, mr.Set("bookstore:session:s1:cartItems", "undefined"))

	store := kvstore.NewStore(client).Namespace("session:s1:")
	engine := cart.New(ctx, store)

	assert.Empty(t, engine.Items())
	assert.False(t, mr.Exists("bookstore:session:s1:cartItems"))

	engine.Add(ctx, models.Book{ID: 1, Title: "Bumi Manusia", Price: decimal.NewFromInt(120000)}, 2)

	raw, err := mr.Get("bookstore:session:s1:cartItems")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"Bumi Manusia","price":120000,"author":"Unknown Author","stock":0,"quantity":2}]`, raw)
}
