package service

import (
	"context"
	"errors"
	"testing"

	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"
	"bookstore-service/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	events []*models.CheckoutSubmittedEvent
	err    error
}

func (p *fakePublisher) PublishCheckoutSubmitted(_ context.Context, event *models.CheckoutSubmittedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newShop(publisher CheckoutPublisher) *ShopService {
	registry := session.NewRegistry(kvstore.NewStore(kvstore.NewMemoryBackend()))
	return NewShopService(registry, publisher, 15000)
}

func book(id, price int64) models.Book {
	return models.Book{
		ID:     id,
		Title:  "Book",
		Price:  decimal.NewFromInt(price),
		Author: models.AuthorRef{Name: "Author"},
		Stock:  10,
	}
}

func validCheckout() *CheckoutRequest {
	return &CheckoutRequest{
		CustomerID:         9,
		ShippingName:       "Rina",
		ShippingAddress:    "Jl. Merdeka 1",
		ShippingCity:       "Bandung",
		ShippingPostalCode: "40111",
		ShippingPhone:      "0812",
	}
}

func TestAddToCartMergesLines(t *testing.T) {
	ctx := context.Background()
	shop := newShop(&fakePublisher{})

	_, err := shop.AddToCart(ctx, "s1", book(1, 100), 2)
	require.NoError(t, err)
	view, err := shop.AddToCart(ctx, "s1", book(1, 100), 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.ItemCount)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(500)))
}

func TestAddToCartRejectsMissingProductID(t *testing.T) {
	shop := newShop(&fakePublisher{})

	_, err := shop.AddToCart(context.Background(), "s1", models.Book{}, 1)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestInvalidSessionID(t *testing.T) {
	shop := newShop(&fakePublisher{})

	_, err := shop.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrInvalidID)
}

func TestUpdateQuantityToZeroRemoves(t *testing.T) {
	ctx := context.Background()
	shop := newShop(&fakePublisher{})
	_, _ = shop.AddToCart(ctx, "s1", book(1, 100), 2)

	view, err := shop.UpdateCartQuantity(ctx, "s1", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)
}

func TestWishlistFlow(t *testing.T) {
	ctx := context.Background()
	shop := newShop(&fakePublisher{})

	_, err := shop.AddToWishlist(ctx, "s1", book(3, 10))
	require.NoError(t, err)
	view, err := shop.AddToWishlist(ctx, "s1", book(3, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, view.Count)

	in, err := shop.InWishlist(ctx, "s1", 3)
	require.NoError(t, err)
	assert.True(t, in)

	view, err = shop.RemoveFromWishlist(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Count)
}

func TestCheckoutPublishesAndClearsCart(t *testing.T) {
	ctx := context.Background()
	publisher := &fakePublisher{}
	shop := newShop(publisher)
	_, _ = shop.AddToCart(ctx, "s1", book(1, 50000), 2)
	_, _ = shop.AddToCart(ctx, "s1", book(2, 25000), 1)

	resp, err := shop.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(125000)))
	assert.True(t, resp.ShippingFee.Equal(decimal.NewFromInt(15000)))
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(140000)))
	assert.Equal(t, 2, resp.LineCount)
	assert.Equal(t, 3, resp.ItemCount)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, models.EventTypeCheckoutSubmitted, event.EventType)
	assert.Equal(t, resp.EventID, event.EventID)
	assert.Equal(t, "s1", event.SessionID)
	assert.Equal(t, int64(9), event.CustomerID)
	assert.Equal(t, "Jl. Merdeka 1, Bandung, 40111", event.ShippingAddress)
	assert.Equal(t, DefaultPaymentMethod, event.PaymentMethod)
	assert.Equal(t, int64(1), event.Items[0].BookID)
	assert.Equal(t, 2, event.Items[0].Quantity)

	cart, err := shop.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	publisher := &fakePublisher{}
	shop := newShop(publisher)

	_, err := shop.Checkout(context.Background(), "s1", validCheckout())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, publisher.events)
}

func TestCheckoutRequiresShippingFields(t *testing.T) {
	ctx := context.Background()
	shop := newShop(&fakePublisher{})
	_, _ = shop.AddToCart(ctx, "s1", book(1, 100), 1)

	req := validCheckout()
	req.ShippingCity = "  "

	_, err := shop.Checkout(ctx, "s1", req)
	assert.ErrorIs(t, err, ErrInvalidCheckout)

	cart, _ := shop.GetCart(ctx, "s1")
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutKeepsCartWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	shop := newShop(&fakePublisher{err: errors.New("broker down")})
	_, _ = shop.AddToCart(ctx, "s1", book(1, 100), 1)

	_, err := shop.Checkout(ctx, "s1", validCheckout())
	assert.ErrorIs(t, err, ErrCheckoutUnavailable)

	cart, _ := shop.GetCart(ctx, "s1")
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutRejectsNonPositiveLines(t *testing.T) {
	ctx := context.Background()
	publisher := &fakePublisher{}
	shop := newShop(publisher)
	_, _ = shop.AddToCart(ctx, "s1", book(1, 100), 1)
	_, _ = shop.AddToCart(ctx, "s1", book(2, 50000), -3)

	_, err := shop.Checkout(ctx, "s1", validCheckout())
	assert.ErrorIs(t, err, ErrInvalidCheckout)
	assert.Empty(t, publisher.events)

	cart, _ := shop.GetCart(ctx, "s1")
	assert.Len(t, cart.Items, 2)

	_, _ = shop.UpdateCartQuantity(ctx, "s1", 2, 0)
	resp, err := shop.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100)))
	require.Len(t, publisher.events, 1)
}
