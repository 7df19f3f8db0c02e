package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// UndefinedSentinel is a raw value left behind by clients that persisted an
// undefined value. It is treated as corrupt.
const UndefinedSentinel = "undefined"

// Outcome describes how a Read resolved
type Outcome string

const (
	OutcomeHit           Outcome = "hit"
	OutcomeMissing       Outcome = "missing"
	OutcomeSentinel      Outcome = "sentinel"
	OutcomeCorrupt       Outcome = "corrupt"
	OutcomeShapeMismatch Outcome = "shape_mismatch"
	OutcomeUnavailable   Outcome = "unavailable"
)

// UsedFallback reports whether the caller received the fallback value
func (o Outcome) UsedFallback() bool {
	return o != OutcomeHit
}

// Store reads and writes JSON values through a Backend
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger
}

// NewStore creates a store over the given backend
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		logger:  util.ComponentLogger("kvstore"),
	}
}

// Namespace returns a view of the store whose keys are prefixed
func (s *Store) Namespace(prefix string) *Store {
	return &Store{
		backend: s.backend,
		prefix:  s.prefix + prefix,
		logger:  s.logger,
	}
}

func (s *Store) fullKey(key string) string {
	return s.prefix + key
}

// Read returns the value stored under key, or fallback when the value is
// missing, corrupt, of the wrong shape, or the backend is unavailable.
func Read[T any](ctx context.Context, s *Store, key string, fallback T) T {
	val, _ := ReadOutcome(ctx, s, key, fallback)
	return val
}

// ReadOutcome is Read that also reports how the value was resolved.
// Corrupt values are deleted from the backend.
func ReadOutcome[T any](ctx context.Context, s *Store, key string, fallback T) (T, Outcome) {
	outcome := OutcomeHit
	defer func() {
		util.StorageReadsTotal.WithLabelValues(key, string(outcome)).Inc()
	}()

	raw, err := s.backend.Get(ctx, s.fullKey(key))
	if errors.Is(err, ErrNotFound) {
		outcome = OutcomeMissing
		return fallback, outcome
	}
	if err != nil {
		s.logger.Error("Error reading persisted key",
			zap.String("key", s.fullKey(key)),
			zap.Error(err))
		outcome = OutcomeUnavailable
		return fallback, outcome
	}

	if raw == UndefinedSentinel {
		s.discard(ctx, key)
		outcome = OutcomeSentinel
		return fallback, outcome
	}

	if !json.Valid([]byte(raw)) {
		s.logger.Warn("Error parsing persisted key, removing it",
			zap.String("key", s.fullKey(key)))
		s.discard(ctx, key)
		outcome = OutcomeCorrupt
		return fallback, outcome
	}

	var val T
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		s.logger.Warn("Persisted key has unexpected shape",
			zap.String("key", s.fullKey(key)),
			zap.Error(err))
		outcome = OutcomeShapeMismatch
		return fallback, outcome
	}

	return val, outcome
}

// Write stores value under key as JSON. Failures are logged and returned;
// callers treat persistence as best-effort.
func Write[T any](ctx context.Context, s *Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		util.StorageWriteFailuresTotal.WithLabelValues(key).Inc()
		s.logger.Error("Error encoding value for persisted key",
			zap.String("key", s.fullKey(key)),
			zap.Error(err))
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := s.backend.Set(ctx, s.fullKey(key), string(data)); err != nil {
		util.StorageWriteFailuresTotal.WithLabelValues(key).Inc()
		s.logger.Error("Error setting persisted key",
			zap.String("key", s.fullKey(key)),
			zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Remove deletes key from the backend
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) discard(ctx context.Context, key string) {
	if err := s.Remove(ctx, key); err != nil {
		s.logger.Error("Failed to remove corrupt persisted key",
			zap.String("key", s.fullKey(key)),
			zap.Error(err))
	}
}
