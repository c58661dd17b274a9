// Package allocator resolves a reservation request to a schedule and
// a block of seats, falling back to later schedules when the
// requested one is full.
package allocator

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// ErrNoSeatAvailable is returned when the requested schedule and
// every later-departing schedule lack the capacity for the party.
var ErrNoSeatAvailable = inventory.ErrNoSeatAvailable

// ScheduleSource supplies schedules in departure order. The
// repository's ScheduleRepo satisfies it; tests use fakes.
type ScheduleSource interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	NextAfter(ctx context.Context, departureAtAToB string) (*model.Schedule, error)
}

// Allocator claims seats from a Store, walking forward through the
// timetable when a schedule cannot seat the whole party.
type Allocator struct {
	schedules ScheduleSource
	store     inventory.Store
}

// New constructs an Allocator.
func New(schedules ScheduleSource, store inventory.Store) *Allocator {
	return &Allocator{schedules: schedules, store: store}
}

// Allocate claims numPeople seats on the requested schedule, or on
// the chronologically next schedule that has capacity. The returned
// schedule id may differ from the requested one; callers report that
// as a recommendation. A party is never split across schedules.
//
// Error cases: ErrNoSeatAvailable when the timetable is exhausted,
// inventory.ErrLockTimeout when the row-locking store could not
// acquire the schedule lock (retryable), repository.ErrScheduleNotFound
// when the requested schedule does not exist, and any infrastructure
// error as-is.
func (a *Allocator) Allocate(ctx context.Context, scheduleID, from, to string, numPeople int) (string, []string, error) {
	if numPeople <= 0 {
		return "", nil, fmt.Errorf("invalid party size %d", numPeople)
	}
	schedule, err := a.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return "", nil, err
	}

	// Walk the timetable instead of recursing: each step moves to a
	// strictly later departure, so the loop visits every schedule at
	// most once.
	for {
		seats, err := a.store.Claim(ctx, schedule.ID, numPeople)
		if err == nil {
			return schedule.ID, seats, nil
		}
		if !errors.Is(err, inventory.ErrNoSeatAvailable) {
			return "", nil, err
		}
		next, err := a.schedules.NextAfter(ctx, schedule.DepartureAtStationAToB)
		if err != nil {
			if errors.Is(err, repository.ErrScheduleNotFound) {
				return "", nil, ErrNoSeatAvailable
			}
			return "", nil, err
		}
		schedule = next
	}
}
