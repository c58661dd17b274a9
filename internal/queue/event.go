// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the sales
// log.
package queue

// Event names carried in BookingEvent.Event.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRefunded  = "booking.refunded"
)

// BookingEvent is published when a reservation is captured or
// refunded. It carries enough information for downstream consumers to
// log or feed the scoreboard without querying the primary database.
type BookingEvent struct {
	Event         string   `json:"event"`
	ReservationID string   `json:"reservation_id"`
	UserID        string   `json:"user_id"`
	ScheduleID    string   `json:"schedule_id"`
	FromStation   string   `json:"from_station"`
	ToStation     string   `json:"to_station"`
	DepartureAt   string   `json:"departure_at"`
	Seats         []string `json:"seats"`
	TotalPrice    int      `json:"total_price"`
	OccurredAt    string   `json:"occurred_at"`
}
