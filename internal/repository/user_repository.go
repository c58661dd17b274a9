package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// UserRepo reads the seeded user accounts and tracks activity for the
// session timeout and the waiting room gate.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, hashed_password, is_admin, global_payment_token, last_activity_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var lastActivity sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.HashedPassword, &u.IsAdmin,
		&u.GlobalPaymentToken, &lastActivity, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if lastActivity.Valid {
		t := lastActivity.Time.UTC()
		u.LastActivityAt = &t
	}
	return &u, nil
}

// GetByName retrieves a user by login name.
func (r *UserRepo) GetByName(ctx context.Context, name string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE name = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, name))
}

// GetByID retrieves a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// TouchActivity updates the user's last activity timestamp to now.
func (r *UserRepo) TouchActivity(ctx context.Context, userID string) error {
	const q = `UPDATE users SET last_activity_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// CountActiveSince counts users whose last activity is at or after
// the given instant. The waiting room admits new users only while
// this stays under its cap.
func (r *UserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE last_activity_at >= ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, since.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
