package repository

import (
	"context"
	"database/sql"
)

// EntryRepo records gate entries. An entry is written at most once
// per reservation and never removed.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo constructs an EntryRepo with the given DB handle.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// Create records that the passenger of a reservation passed the gate.
func (r *EntryRepo) Create(ctx context.Context, reservationID string) error {
	const q = `INSERT INTO entries (reservation_id) VALUES (?)`
	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}

// Exists reports whether a reservation already has a gate entry.
func (r *EntryRepo) Exists(ctx context.Context, reservationID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM entries WHERE reservation_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, reservationID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
