package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SettingRepository is a key-value store over the settings table.
//
// It backs the player's persisted track choice when the sqlite storage driver is selected.
type SettingRepository struct {
	db *sql.DB
}

var _ Store = (*SettingRepository)(nil)

// NewSettingRepository creates a new SettingRepository with the given database connection
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value stored under key and whether it exists.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (r *SettingRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove setting %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; the database is owned by the caller.
func (r *SettingRepository) Close() error {
	return nil
}
