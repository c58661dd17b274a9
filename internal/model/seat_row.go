package model

// SeatRowAvailability is the denormalized per-leg availability record
// for one seat row of one schedule.  Column flags A..E mirror the
// physical seat columns; a column beyond the train model's
// seat_columns is seeded unavailable.  The SQL inventory treats these
// rows as authoritative; the queue inventory only keeps them in sync
// best-effort for seat-map queries.
type SeatRowAvailability struct {
	ID            uint64 // seat_row_reservations.id
	TrainID       uint64 // seat_row_reservations.train_id
	ScheduleID    string // seat_row_reservations.schedule_id
	FromStationID string // seat_row_reservations.from_station_id
	ToStationID   string // seat_row_reservations.to_station_id
	SeatRow       int    // seat_row_reservations.seat_row
	AIsAvailable  bool   // seat_row_reservations.a_is_available
	BIsAvailable  bool   // seat_row_reservations.b_is_available
	CIsAvailable  bool   // seat_row_reservations.c_is_available
	DIsAvailable  bool   // seat_row_reservations.d_is_available
	EIsAvailable  bool   // seat_row_reservations.e_is_available
}
