// Package inventory holds the seat inventory stores. A store tracks,
// per schedule, which seats are still claimable, and exposes atomic
// claim/release operations. Two implementations exist with identical
// contracts: LockedRelationalInventory serializes allocations with a
// schedule-level advisory lock in MySQL, AtomicQueueInventory pops
// from a Redis list. Both guarantee that concurrent claims against
// one schedule never hand out the same seat twice and that a failed
// claim leaves availability exactly as it was.
package inventory

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSeatAvailable is returned when a schedule cannot satisfy the
// requested party size. The allocator reacts by trying the next
// later-departing schedule.
var ErrNoSeatAvailable = errors.New("no seat available")

// ErrLockTimeout is returned by the row-locking store when the
// schedule lock could not be acquired within the retry budget. The
// request failed without touching any seat state and may be retried
// by the caller.
var ErrLockTimeout = errors.New("schedule lock timeout")

// seatColumnLetters orders the physical seat columns within a row.
var seatColumnLetters = []string{"A", "B", "C", "D", "E"}

// Store is the seat inventory contract shared by both backends. Seat
// identifiers are "row-column" strings such as "12-C".
type Store interface {
	// Seed registers the claimable seat pool of a newly created
	// schedule. The relational availability rows are seeded
	// separately by the schedule creator; Seed only prepares
	// whatever backend-specific structure claims are served from.
	Seed(ctx context.Context, scheduleID string, seatRows, seatColumns int) error

	// Claim atomically takes n seats from the schedule's pool. It
	// returns either exactly n seat identifiers or an error; a
	// claim that cannot be satisfied in full takes nothing.
	Claim(ctx context.Context, scheduleID string, n int) ([]string, error)

	// Release returns previously claimed seats to the pool, making
	// them immediately claimable again. Safe to run concurrently
	// with fresh claims on the same schedule.
	Release(ctx context.Context, scheduleID string, seats []string) error
}

// SeatIDs enumerates every seat of a rows×columns layout in row-major
// order: "1-A", "1-B", ..., "2-A", ...
func SeatIDs(seatRows, seatColumns int) []string {
	if seatColumns > len(seatColumnLetters) {
		seatColumns = len(seatColumnLetters)
	}
	ids := make([]string, 0, seatRows*seatColumns)
	for row := 1; row <= seatRows; row++ {
		for col := 0; col < seatColumns; col++ {
			ids = append(ids, fmt.Sprintf("%d-%s", row, seatColumnLetters[col]))
		}
	}
	return ids
}
