package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number for a unique key
// violation (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// LockRepo implements the schedule-level advisory lock used by the
// row-locking inventory. A lock is an INSERT into a table whose
// primary key is the schedule id, so at most one allocator can hold
// it per schedule at a time. Locks are transient: they exist only for
// the duration of one seat allocation.
type LockRepo struct {
	db *sql.DB
}

// NewLockRepo constructs a LockRepo with the given DB handle.
func NewLockRepo(db *sql.DB) *LockRepo {
	return &LockRepo{db: db}
}

// Acquire attempts to take the lock for a schedule. It returns
// ErrLockHeld when another holder exists; callers decide the retry
// policy.
func (r *LockRepo) Acquire(ctx context.Context, scheduleID string) error {
	const q = `INSERT INTO schedule_locks (schedule_id) VALUES (?)`
	_, err := r.db.ExecContext(ctx, q, scheduleID)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrLockHeld
		}
		return err
	}
	return nil
}

// Release drops the lock for a schedule. Releasing a lock that is not
// held is a no-op.
func (r *LockRepo) Release(ctx context.Context, scheduleID string) error {
	const q = `DELETE FROM schedule_locks WHERE schedule_id = ?`
	_, err := r.db.ExecContext(ctx, q, scheduleID)
	return err
}
