package wishlist

import (
	"context"
	"sync"

	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// SlotKey is the persisted slot holding the saved products
const SlotKey = "wishlistItems"

// Engine is a single shopper's wishlist
type Engine struct {
	mu     sync.Mutex
	items  *kvstore.Slot[[]models.WishlistItem]
	logger *zap.Logger
}

// New creates a wishlist engine hydrated from store
func New(ctx context.Context, store *kvstore.Store) *Engine {
	e := &Engine{
		items:  kvstore.NewSlot(ctx, store, SlotKey, []models.WishlistItem{}, kvstore.WithNormalizer(normalize)),
		logger: util.ComponentLogger("wishlist"),
	}

	if outcome := e.items.Outcome(); outcome.UsedFallback() && outcome != kvstore.OutcomeMissing {
		e.logger.Warn("Wishlist state recovered with empty wishlist", zap.String("outcome", string(outcome)))
	}
	return e
}

// Add saves product unless it is already saved
func (e *Engine) Add(ctx context.Context, product models.Book) {
	e.mu.Lock()
	defer e.mu.Unlock()

	util.WishlistOperationsTotal.WithLabelValues("add").Inc()
	_ = e.items.Update(ctx, func(prev []models.WishlistItem) []models.WishlistItem {
		for _, item := range prev {
			if item.ID == product.ID {
				return prev
			}
		}

		next := make([]models.WishlistItem, len(prev), len(prev)+1)
		copy(next, prev)
		return append(next, models.WishlistItem{
			ID:         product.ID,
			Title:      product.Title,
			Price:      product.Price,
			CoverPhoto: product.CoverPhoto,
			Author:     product.Author.DisplayName(),
			Stock:      product.Stock,
		})
	})
}

// Remove drops the entry for id
func (e *Engine) Remove(ctx context.Context, id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	util.WishlistOperationsTotal.WithLabelValues("remove").Inc()
	_ = e.items.Update(ctx, func(prev []models.WishlistItem) []models.WishlistItem {
		next := make([]models.WishlistItem, 0, len(prev))
		for _, item := range prev {
			if item.ID != id {
				next = append(next, item)
			}
		}
		return next
	})
}

// Contains reports whether id is saved
func (e *Engine) Contains(id int64) bool {
	for _, item := range e.items.Get() {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Clear removes every entry
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	util.WishlistOperationsTotal.WithLabelValues("clear").Inc()
	_ = e.items.Set(ctx, []models.WishlistItem{})
}

// Items returns a copy of the saved products
func (e *Engine) Items() []models.WishlistItem {
	items := e.items.Get()
	out := make([]models.WishlistItem, len(items))
	copy(out, items)
	return out
}

// Count returns the number of saved products
func (e *Engine) Count() int {
	return len(e.items.Get())
}

// normalize keeps the first entry per id
func normalize(items []models.WishlistItem) []models.WishlistItem {
	out := make([]models.WishlistItem, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
