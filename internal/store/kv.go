package store

import (
	"context"
	"database/sql"

	"bookstore-service/internal/kvstore"
)

// KVTable is a kvstore.Backend over the kv_entries table
type KVTable struct {
	store *Store
}

// KV returns the kv_entries backend
func (s *Store) KV() *KVTable {
	return &KVTable{store: s}
}

func (k *KVTable) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := k.store.db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return "", kvstore.ErrNotFound
	}
	return value, err
}

func (k *KVTable) Set(ctx context.Context, key, value string) error {
	_, err := k.store.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (k *KVTable) Delete(ctx context.Context, key string) error {
	_, err := k.store.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = $1", key)
	return err
}
