// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as the booking service and handlers to distinguish between
// failure scenarios without string matching. For example,
// ErrReservationNotFound maps to the INVALID_RESERVATION wire code,
// while ErrLockHeld tells the SQL inventory to retry acquisition.
package repository

import "errors"

// ErrScheduleNotFound is returned when a schedule lookup yields no rows.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrTrainModelNotFound is returned when a train model lookup yields no rows.
var ErrTrainModelNotFound = errors.New("train model not found")

// ErrReservationNotFound is returned when a reservation lookup yields
// no rows, including entry-token lookups.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrPaymentNotFound is returned when a reservation has no payment row.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrLockHeld is returned by LockRepo.Acquire when another allocator
// currently holds the schedule lock. Callers retry with backoff.
var ErrLockHeld = errors.New("schedule lock held")
