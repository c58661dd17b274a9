package model

import "time"

// Payment is the single payment attached to a reservation.  The
// amount is fixed at reservation time; capture happens later through
// the external payment app.  IsCaptured and IsRefunded are never both
// true after a consistent transition.
type Payment struct {
	ID            uint64    // payments.id
	UserID        string    // payments.user_id
	ReservationID string    // payments.reservation_id
	Amount        int       // payments.amount, minor currency units
	IsCaptured    bool      // payments.is_captured
	IsRefunded    bool      // payments.is_refunded
	CreatedAt     time.Time // payments.created_at
	UpdatedAt     time.Time // payments.updated_at
}
