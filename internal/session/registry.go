// Package session binds a shopper profile to its cart and wishlist engines.
// A session plays the role of one browser profile: its slots are persisted
// under the "session:<id>:" namespace and re-hydrated on first access.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"bookstore-service/internal/cart"
	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/util"
	"bookstore-service/internal/wishlist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidID is returned for empty or malformed session ids
var ErrInvalidID = errors.New("invalid session id")

const maxIDLength = 128

// DefaultIdleTimeout drops in-memory sessions nobody touched for this long
const DefaultIdleTimeout = time.Hour

// Session is one shopper profile
type Session struct {
	ID       string
	Cart     *cart.Engine
	Wishlist *wishlist.Engine
}

// Registry constructs sessions on first use and keeps them until they sit idle
// past the timeout given to EvictIdle or RunEviction
type Registry struct {
	mu       sync.Mutex
	store    *kvstore.Store
	sessions map[string]*Session
	lastSeen map[string]time.Time
	now      func() time.Time
	logger   *zap.Logger
}

// NewRegistry creates a registry over store
func NewRegistry(store *kvstore.Store) *Registry {
	return &Registry{
		store:    store,
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
		logger:   util.ComponentLogger("session"),
	}
}

// New mints a fresh session id and returns its session
func (r *Registry) New(ctx context.Context) *Session {
	s, _ := r.Get(ctx, uuid.New().String())
	return s
}

// Get returns the session for id, hydrating it from storage if this process
// has not seen it yet
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastSeen[id] = r.now()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}

	ns := r.store.Namespace("session:" + id + ":")
	s := &Session{
		ID:       id,
		Cart:     cart.New(ctx, ns),
		Wishlist: wishlist.New(ctx, ns),
	}
	r.sessions[id] = s
	util.SessionsActive.Set(float64(len(r.sessions)))

	r.logger.Debug("Session hydrated", zap.String("session_id", id))
	return s, nil
}

// Evict drops the in-memory copy of a session. Persisted state is kept.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked(id)
}

func (r *Registry) evictLocked(id string) {
	delete(r.sessions, id)
	delete(r.lastSeen, id)
	util.SessionsActive.Set(float64(len(r.sessions)))
}

// EvictIdle drops every session not accessed within idle and returns how
// many were dropped
func (r *Registry) EvictIdle(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	evicted := 0
	for id, seen := range r.lastSeen {
		if seen.Before(cutoff) {
			r.evictLocked(id)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is cancelled
func (r *Registry) RunEviction(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("Session eviction started",
		zap.Duration("idle_timeout", idle),
		zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(idle); n > 0 {
				r.logger.Debug("Idle sessions evicted", zap.Int("count", n))
			}
		}
	}
}

// IdleTimeout picks the eviction timeout for a storage TTL. The in-memory
// copy never outlives the persisted slots.
func IdleTimeout(storageTTL time.Duration) time.Duration {
	if storageTTL > 0 {
		return storageTTL
	}
	return DefaultIdleTimeout
}

// Len returns the number of sessions held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func validateID(id string) error {
	if id == "" || len(id) > maxIDLength || strings.ContainsAny(id, ": \t\n") {
		return ErrInvalidID
	}
	return nil
}
