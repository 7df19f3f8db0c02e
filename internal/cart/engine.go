// Package cart holds a shopper's line items, merged by product id and
// persisted in the "cartItems" slot.
package cart

import (
	"context"
	"sync"

	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SlotKey is the persisted slot holding the cart lines
const SlotKey = "cartItems"

// Engine is a single shopper's cart
type Engine struct {
	mu     sync.Mutex
	items  *kvstore.Slot[[]models.LineItem]
	open   bool
	logger *zap.Logger
}

// New creates a cart engine hydrated from store
func New(ctx context.Context, store *kvstore.Store) *Engine {
	e := &Engine{
		items:  kvstore.NewSlot(ctx, store, SlotKey, []models.LineItem{}, kvstore.WithNormalizer(normalize)),
		logger: util.ComponentLogger("cart"),
	}

	if outcome := e.items.Outcome(); outcome.UsedFallback() && outcome != kvstore.OutcomeMissing {
		e.logger.Warn("Cart state recovered with empty cart", zap.String("outcome", string(outcome)))
	}
	return e
}

// Add puts quantity of product into the cart, merging into an existing line
func (e *Engine) Add(ctx context.Context, product models.Book, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	_ = e.items.Update(ctx, func(prev []models.LineItem) []models.LineItem {
		for i := range prev {
			if prev[i].ID == product.ID {
				next := clone(prev)
				next[i].Quantity += quantity
				return next
			}
		}

		return append(clone(prev), models.LineItem{
			ID:         product.ID,
			Title:      product.Title,
			Price:      product.Price,
			CoverPhoto: product.CoverPhoto,
			Author:     product.Author.DisplayName(),
			Stock:      product.Stock,
			Quantity:   quantity,
		})
	})
}

// Remove drops the line for id
func (e *Engine) Remove(ctx context.Context, id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.remove(ctx, id)
}

func (e *Engine) remove(ctx context.Context, id int64) {
	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	_ = e.items.Update(ctx, func(prev []models.LineItem) []models.LineItem {
		next := make([]models.LineItem, 0, len(prev))
		for _, item := range prev {
			if item.ID != id {
				next = append(next, item)
			}
		}
		return next
	})
}

// UpdateQuantity sets the quantity of the line for id. A quantity of zero or
// less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.remove(ctx, id)
		return
	}

	util.CartOperationsTotal.WithLabelValues("update_quantity").Inc()
	_ = e.items.Update(ctx, func(prev []models.LineItem) []models.LineItem {
		next := clone(prev)
		for i := range next {
			if next[i].ID == id {
				next[i].Quantity = quantity
			}
		}
		return next
	})
}

// Clear empties the cart
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	util.CartOperationsTotal.WithLabelValues("clear").Inc()
	_ = e.items.Set(ctx, []models.LineItem{})
}

// Checkout passes a snapshot of the lines and their total to submit while
// holding the cart, then empties it if submit succeeds. No other mutation can
// land between the snapshot and the clear.
func (e *Engine) Checkout(ctx context.Context, submit func(items []models.LineItem, total decimal.Decimal) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := clone(e.items.Get())
	if err := submit(items, sumTotal(items)); err != nil {
		return err
	}

	util.CartOperationsTotal.WithLabelValues("checkout").Inc()
	_ = e.items.Set(ctx, []models.LineItem{})
	return nil
}

// Items returns a copy of the cart lines
func (e *Engine) Items() []models.LineItem {
	return clone(e.items.Get())
}

// Contains reports whether the cart has a line for id
func (e *Engine) Contains(id int64) bool {
	for _, item := range e.items.Get() {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Total returns the sum of price * quantity over all lines
func (e *Engine) Total() decimal.Decimal {
	return sumTotal(e.items.Get())
}

// ItemCount returns the sum of quantities over all lines
func (e *Engine) ItemCount() int {
	count := 0
	for _, item := range e.items.Get() {
		count += item.Quantity
	}
	return count
}

// IsOpen reports whether the cart panel is shown. Not persisted.
func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// SetOpen shows or hides the cart panel
func (e *Engine) SetOpen(open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = open
}

// normalize guarantees a non-nil slice with one line per id
func normalize(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func sumTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func clone(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}
