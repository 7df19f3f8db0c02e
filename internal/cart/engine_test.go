package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(id int64, price int64) models.Book {
	return models.Book{
		ID:     id,
		Title:  "Book",
		Price:  decimal.NewFromInt(price),
		Author: models.AuthorRef{Name: "Pramoedya"},
		Stock:  10,
	}
}

func newEngine(t *testing.T) (*Engine, *kvstore.MemoryBackend) {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	return New(context.Background(), kvstore.NewStore(backend)), backend
}

func TestAddMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	e.Add(ctx, book(1, 10), 2)
	e.Add(ctx, book(1, 10), 3)

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddBuildsLineFromProduct(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	p := book(7, 45000)
	p.CoverPhoto = "covers/7.jpg"
	e.Add(ctx, p, 1)

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.LineItem{
		ID:         7,
		Title:      "Book",
		Price:      decimal.NewFromInt(45000),
		CoverPhoto: "covers/7.jpg",
		Author:     "Pramoedya",
		Stock:      10,
		Quantity:   1,
	}, items[0])
}

func TestAddWithoutAuthorUsesUnknownAuthor(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	p := book(2, 5)
	p.Author = models.AuthorRef{}
	e.Add(ctx, p, 1)

	assert.Equal(t, models.UnknownAuthor, e.Items()[0].Author)
}

func TestUpdateQuantityToZeroOrBelowRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		ctx := context.Background()
		e, _ := newEngine(t)
		e.Add(ctx, book(1, 10), 2)
		e.Add(ctx, book(2, 5), 1)

		e.UpdateQuantity(ctx, 1, qty)

		assert.False(t, e.Contains(1), "quantity %d", qty)
		assert.True(t, e.Contains(2))
		assert.Len(t, e.Items(), 1)
	}
}

func TestUpdateQuantitySetsAbsoluteValue(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	e.Add(ctx, book(1, 10), 4)

	e.UpdateQuantity(ctx, 1, 2)
	e.UpdateQuantity(ctx, 99, 3)

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	e.Add(ctx, book(1, 10), 1)

	e.Remove(ctx, 42)

	assert.Len(t, e.Items(), 1)
}

func TestTotalAndItemCount(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	assert.True(t, e.Total().IsZero())
	assert.Equal(t, 0, e.ItemCount())

	e.Add(ctx, book(1, 10), 2)
	e.Add(ctx, book(2, 5), 3)

	assert.True(t, decimal.NewFromInt(35).Equal(e.Total()), "got %s", e.Total())
	assert.Equal(t, 5, e.ItemCount())
}

func TestClearEmptiesAndPersists(t *testing.T) {
	ctx := context.Background()
	e, backend := newEngine(t)
	e.Add(ctx, book(1, 10), 2)

	e.Clear(ctx)

	assert.Empty(t, e.Items())
	raw, err := backend.Get(ctx, SlotKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewStore(kvstore.NewMemoryBackend())

	first := New(ctx, store)
	first.Add(ctx, book(1, 10), 2)
	first.SetOpen(true)

	second := New(ctx, store)
	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(items[0].Price))
	assert.False(t, second.IsOpen())
}

func TestRecoversFromUndefinedSentinel(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, SlotKey, "undefined"))

	e := New(ctx, kvstore.NewStore(backend))

	assert.Empty(t, e.Items())
	assert.Equal(t, 0, e.ItemCount())
	e.Add(ctx, book(1, 10), 1)
	assert.Len(t, e.Items(), 1)
}

func TestNonArrayStateTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, SlotKey, `{"id": 1}`))

	e := New(ctx, kvstore.NewStore(backend))
	e.Add(ctx, book(3, 10), 1)

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ID)
}

func TestDuplicateStoredLinesAreMerged(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, SlotKey,
		`[{"id":1,"title":"A","price":10,"author":"X","stock":3,"quantity":1},
		  {"id":1,"title":"A","price":10,"author":"X","stock":3,"quantity":2}]`))

	e := New(ctx, kvstore.NewStore(backend))

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	e.Add(ctx, book(1, 10), 1)

	items := e.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, e.Items()[0].Quantity)
}

func TestCheckoutClearsAfterSubmit(t *testing.T) {
	ctx := context.Background()
	e, backend := newEngine(t)
	e.Add(ctx, book(1, 10), 2)
	e.Add(ctx, book(2, 5), 1)

	var got []models.LineItem
	err := e.Checkout(ctx, func(items []models.LineItem, total decimal.Decimal) error {
		got = items
		assert.True(t, total.Equal(decimal.NewFromInt(25)))
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Empty(t, e.Items())
	raw, err := backend.Get(ctx, SlotKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCheckoutKeepsCartWhenSubmitFails(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	e.Add(ctx, book(1, 10), 2)

	err := e.Checkout(ctx, func([]models.LineItem, decimal.Decimal) error {
		return errors.New("rejected")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, e.ItemCount())
}

func TestAddDuringCheckoutIsKept(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	e.Add(ctx, book(1, 10), 1)

	var wg sync.WaitGroup
	err := e.Checkout(ctx, func(items []models.LineItem, _ decimal.Decimal) error {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Add(ctx, book(2, 10), 4)
		}()
		assert.Len(t, items, 1)
		assert.False(t, e.Contains(2))
		return nil
	})
	require.NoError(t, err)
	wg.Wait()

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, 4, items[0].Quantity)
}
