package repository

import (
	"context"
	"database/sql"
	"time"
)

// SettingRepo manages the single settings row that anchors the
// simulated clock.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo constructs a SettingRepo with the given DB handle.
func NewSettingRepo(db *sql.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

// Reset replaces the settings row, restarting the simulated day at
// the database's current timestamp. It returns the new
// initialization instant.
func (r *SettingRepo) Reset(ctx context.Context) (time.Time, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return time.Time{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO settings () VALUES ()`); err != nil {
		return time.Time{}, err
	}
	var initializedAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT initialized_at FROM settings LIMIT 1`).Scan(&initializedAt); err != nil {
		return time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, err
	}
	committed = true
	return initializedAt.UTC(), nil
}

// InitializedAt reads the stored initialization instant. Every server
// instance derives its simulated clock from this shared value.
func (r *SettingRepo) InitializedAt(ctx context.Context) (time.Time, error) {
	var t time.Time
	if err := r.db.QueryRowContext(ctx, `SELECT initialized_at FROM settings LIMIT 1`).Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
