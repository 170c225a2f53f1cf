package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// StorageRepo is the SQLite-backed store.KV: one row per (session, key).
type StorageRepo struct{ db *sqlx.DB }

func NewStorageRepo(db *sqlx.DB) *StorageRepo { return &StorageRepo{db: db} }

func (r *StorageRepo) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM storage WHERE session_id = ? AND item_key = ?`, sessionID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *StorageRepo) Set(ctx context.Context, sessionID, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO storage(session_id, item_key, value, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, item_key) DO UPDATE
		SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, sessionID, key, string(value))
	return err
}
