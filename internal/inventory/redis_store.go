package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// AtomicQueueInventory serves claims from a per-schedule Redis list
// seeded with every seat identifier. A claim is a single LPOP of n
// items, which is indivisible on the server, so no external lock is
// needed. The relational availability rows get a best-effort update
// after each claim so seat-map queries stay roughly current; the list
// alone is authoritative for correctness.
type AtomicQueueInventory struct {
	rdb      *redis.Client
	seatRows *repository.SeatRowRepo
}

// NewAtomicQueueInventory builds the Redis-backed store.
func NewAtomicQueueInventory(rdb *redis.Client, seatRows *repository.SeatRowRepo) *AtomicQueueInventory {
	return &AtomicQueueInventory{rdb: rdb, seatRows: seatRows}
}

func seatListKey(scheduleID string) string {
	return "schedule:" + scheduleID + ":available_seats"
}

// Seed fills the schedule's seat list with all rows×columns seat
// identifiers. Any previous list is replaced, so re-initialization
// cannot duplicate seats.
func (s *AtomicQueueInventory) Seed(ctx context.Context, scheduleID string, seatRows, seatColumns int) error {
	ids := SeatIDs(seatRows, seatColumns)
	if len(ids) == 0 {
		return nil
	}
	key := seatListKey(scheduleID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset seat list: %w", err)
	}
	if err := s.rdb.RPush(ctx, key, toInterfaces(ids)...).Err(); err != nil {
		return fmt.Errorf("seed seat list: %w", err)
	}
	return nil
}

// Claim pops up to n seats from the front of the list in one atomic
// operation. When fewer than n come back the popped seats are pushed
// straight back (order need not be restored, only the count) and
// ErrNoSeatAvailable is returned.
func (s *AtomicQueueInventory) Claim(ctx context.Context, scheduleID string, n int) ([]string, error) {
	key := seatListKey(scheduleID)
	popped, err := s.rdb.LPopCount(ctx, key, n).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pop seats: %w", err)
	}
	if len(popped) < n {
		if len(popped) > 0 {
			if err := s.rdb.LPush(ctx, key, toInterfaces(popped)...).Err(); err != nil {
				return nil, fmt.Errorf("restore popped seats: %w", err)
			}
		}
		return nil, ErrNoSeatAvailable
	}
	// Informational seat map only; the list already holds the truth.
	if err := s.seatRows.MarkSeatsUnavailable(ctx, scheduleID, popped); err != nil {
		log.Printf("inventory: seat map update for %s failed: %v", scheduleID, err)
	}
	return popped, nil
}

// Release pushes seats back onto the front of the list, making them
// immediately claimable.
func (s *AtomicQueueInventory) Release(ctx context.Context, scheduleID string, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	if err := s.rdb.LPush(ctx, seatListKey(scheduleID), toInterfaces(seats)...).Err(); err != nil {
		return fmt.Errorf("push seats back: %w", err)
	}
	if err := s.seatRows.MarkSeatsAvailable(ctx, scheduleID, seats); err != nil {
		log.Printf("inventory: seat map restore for %s failed: %v", scheduleID, err)
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
