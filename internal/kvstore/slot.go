package kvstore

import (
	"context"
	"sync"
)

// Slot is a named persisted value with a declared fallback. The in-memory
// value is authoritative; every change is written through to the Store.
type Slot[T any] struct {
	mu        sync.Mutex
	store     *Store
	key       string
	fallback  T
	normalize func(T) T
	value     T
	outcome   Outcome
}

// SlotOption configures a Slot
type SlotOption[T any] func(*Slot[T])

// WithNormalizer sets a function applied to the value after every hydrate
// and update
func WithNormalizer[T any](fn func(T) T) SlotOption[T] {
	return func(s *Slot[T]) {
		s.normalize = fn
	}
}

// NewSlot creates a slot and hydrates it from the store
func NewSlot[T any](ctx context.Context, store *Store, key string, fallback T, opts ...SlotOption[T]) *Slot[T] {
	s := &Slot[T]{
		store:    store,
		key:      key,
		fallback: fallback,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Reload(ctx)
	return s
}

// Reload re-reads the slot from the store. A value of the wrong shape is
// replaced by the fallback, which is written back.
func (s *Slot[T]) Reload(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, outcome := ReadOutcome(ctx, s.store, s.key, s.fallback)
	s.value = s.apply(val)
	s.outcome = outcome

	if outcome == OutcomeShapeMismatch {
		_ = Write(ctx, s.store, s.key, s.value)
	}
	return outcome
}

// Key returns the slot name
func (s *Slot[T]) Key() string {
	return s.key
}

// Outcome returns how the last hydrate resolved
func (s *Slot[T]) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Get returns the current in-memory value
func (s *Slot[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value. The in-memory value changes even if the write
// fails; the write error is returned for callers that care.
func (s *Slot[T]) Set(ctx context.Context, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = s.apply(value)
	return Write(ctx, s.store, s.key, s.value)
}

// Update replaces the value with fn applied to the current value
func (s *Slot[T]) Update(ctx context.Context, fn func(prev T) T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = s.apply(fn(s.value))
	return Write(ctx, s.store, s.key, s.value)
}

func (s *Slot[T]) apply(val T) T {
	if s.normalize != nil {
		return s.normalize(val)
	}
	return val
}
