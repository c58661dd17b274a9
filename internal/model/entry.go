package model

import "time"

// Entry marks that the passenger passed the boarding gate before
// departure.  At most one entry exists per reservation, and a
// reservation with an entry can never be refunded.
type Entry struct {
	ID            uint64    // entries.id
	ReservationID string    // entries.reservation_id
	CreatedAt     time.Time // entries.created_at
}
