package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

const (
	lockAttempts = 10
	lockBackoff  = 100 * time.Millisecond
)

// LockedRelationalInventory serves claims from the per-leg
// availability rows in MySQL. The aggregate-then-assign sequence is
// not atomic on its own, so every claim runs under a schedule-level
// advisory lock: acquired before any seat state is read, released on
// every path. A lock timeout therefore never leaves partial claims
// behind.
type LockedRelationalInventory struct {
	locks    *repository.LockRepo
	seatRows *repository.SeatRowRepo
}

// NewLockedRelationalInventory builds the SQL-backed store.
func NewLockedRelationalInventory(locks *repository.LockRepo, seatRows *repository.SeatRowRepo) *LockedRelationalInventory {
	return &LockedRelationalInventory{locks: locks, seatRows: seatRows}
}

// Seed is a no-op: the relational availability rows written at
// schedule-creation time are the claimable pool.
func (s *LockedRelationalInventory) Seed(ctx context.Context, scheduleID string, seatRows, seatColumns int) error {
	return nil
}

// Claim takes n seats for the whole run of a schedule. Under the
// schedule lock it aggregates per-row availability across all legs,
// assigns seats greedily (row-first, columns A→E) and persists the
// assignments. Returns ErrLockTimeout when the lock stays contended
// through the retry budget and ErrNoSeatAvailable when fewer than n
// seats remain.
func (s *LockedRelationalInventory) Claim(ctx context.Context, scheduleID string, n int) ([]string, error) {
	acquired := false
	for attempt := 0; attempt < lockAttempts; attempt++ {
		err := s.locks.Acquire(ctx, scheduleID)
		if err == nil {
			acquired = true
			break
		}
		if !errors.Is(err, repository.ErrLockHeld) {
			return nil, fmt.Errorf("acquire schedule lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	if !acquired {
		return nil, ErrLockTimeout
	}
	defer func() {
		// Release must happen even when the request context is
		// already cancelled, or the schedule stays locked out.
		if err := s.locks.Release(context.WithoutCancel(ctx), scheduleID); err != nil {
			log.Printf("inventory: release lock for %s failed: %v", scheduleID, err)
		}
	}()

	total, err := s.seatRows.TotalAvailable(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("aggregate availability: %w", err)
	}
	if total < n {
		return nil, ErrNoSeatAvailable
	}

	rows, err := s.seatRows.RowStatuses(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load row statuses: %w", err)
	}
	seats := assignSeats(rows, n)
	if len(seats) < n {
		// The aggregate said n seats exist, so this only happens on
		// corrupted rows. Claim nothing.
		return nil, ErrNoSeatAvailable
	}
	if err := s.seatRows.MarkSeatsUnavailable(ctx, scheduleID, seats); err != nil {
		return nil, fmt.Errorf("persist seat claims: %w", err)
	}
	return seats, nil
}

// Release restores the availability flags of the given seats. Runs
// without the lock: flag restores are per-seat updates that cannot
// conflict with an in-flight assignment of other seats.
func (s *LockedRelationalInventory) Release(ctx context.Context, scheduleID string, seats []string) error {
	return s.seatRows.MarkSeatsAvailable(ctx, scheduleID, seats)
}

// assignSeats picks n seats from the aggregated rows greedily:
// row-first, columns in A→E order. Rows arrive ordered by row number,
// so the result is deterministic.
func assignSeats(rows []repository.RowStatus, n int) []string {
	seats := make([]string, 0, n)
	for _, row := range rows {
		for col := 0; col < len(seatColumnLetters) && len(seats) < n; col++ {
			if row.Cols[col] {
				seats = append(seats, fmt.Sprintf("%d-%s", row.SeatRow, seatColumnLetters[col]))
			}
		}
		if len(seats) == n {
			break
		}
	}
	return seats
}
