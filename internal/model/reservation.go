package model

import "time"

// Reservation records one booking of a block of seats on a schedule.
// Seats claimed under a reservation are stored in the
// reservation_seats table.  Reservations are never physically
// deleted; their payment flags change instead.
//
// Fields:
//  ID            – ULID primary key (time-sortable).
//  UserID        – user who made the reservation.
//  ScheduleID    – schedule the seats were claimed on.  May differ
//                  from the schedule the user asked for when the
//                  allocator recommended a later run.
//  FromStationID – boarding station ("A".."E").
//  ToStationID   – alighting station ("A".."E").
//  DepartureAt   – "HH:MM" departure of the boarding leg.
//  EntryToken    – distinct ULID presented at the boarding gate.
//  CreatedAt     – creation timestamp.
type Reservation struct {
	ID            string    // reservations.id
	UserID        string    // reservations.user_id
	ScheduleID    string    // reservations.schedule_id
	FromStationID string    // reservations.from_station_id
	ToStationID   string    // reservations.to_station_id
	DepartureAt   string    // reservations.departure_at
	EntryToken    string    // reservations.entry_token
	CreatedAt     time.Time // reservations.created_at
}

// ReservationSeat links a reservation to one claimed seat cell,
// rendered as a "row-column" string such as "12-C".
type ReservationSeat struct {
	ID            uint64    // reservation_seats.id
	ReservationID string    // reservation_seats.reservation_id
	Seat          string    // reservation_seats.seat
	CreatedAt     time.Time // reservation_seats.created_at
}
