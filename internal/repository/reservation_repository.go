package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// seats. Reservations group the seats claimed for one booking; the
// "row-column" seat strings live in the reservation_seats table.
// Reservations are created once and never deleted within a contest
// run.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so the booking service can open
// transactions spanning reservations, seats and payments.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new reservation within the scope of an existing
// transaction. The caller supplies the ULID id and entry token and
// must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (id, user_id, schedule_id, from_station_id, to_station_id, departure_at, entry_token)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		res.ID, res.UserID, res.ScheduleID, res.FromStationID, res.ToStationID,
		res.DepartureAt, res.EntryToken)
	return err
}

// CreateSeatsBulkTx inserts the claimed seats of one reservation in a
// single statement. Passing an empty slice has no effect.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, reservationID string, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, seat) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, seat)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const reservationColumns = `id, user_id, schedule_id, from_station_id, to_station_id, departure_at, entry_token, created_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.UserID, &res.ScheduleID, &res.FromStationID, &res.ToStationID,
		&res.DepartureAt, &res.EntryToken, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByID retrieves a reservation by its id.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetByEntryToken retrieves a reservation by its gate entry token.
func (r *ReservationRepo) GetByEntryToken(ctx context.Context, token string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE entry_token = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, token))
}

// SeatsByReservation returns the claimed seat strings of a
// reservation in lexical order.
func (r *ReservationRepo) SeatsByReservation(ctx context.Context, reservationID string) ([]string, error) {
	const q = `SELECT seat FROM reservation_seats WHERE reservation_id = ? ORDER BY seat`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// PurchasedTicket is one captured reservation as shown on the
// purchased-tickets page.
type PurchasedTicket struct {
	ReservationID string   `json:"reservation_id"`
	ScheduleID    string   `json:"schedule_id"`
	FromStation   string   `json:"from_station"`
	ToStation     string   `json:"to_station"`
	DepartureAt   string   `json:"departure_at"`
	Seats         []string `json:"seats"`
	TotalPrice    int      `json:"total_price"`
	EntryToken    string   `json:"entry_token"`
	QRCodeURL     string   `json:"qr_code_url"`
	IsEntered     bool     `json:"is_entered"`
}

// ListPurchasedByUser returns the user's captured reservations with
// their seats, price and entry state. Station ids are returned raw;
// the handler maps them to display names.
func (r *ReservationRepo) ListPurchasedByUser(ctx context.Context, userID string) ([]PurchasedTicket, error) {
	const q = `SELECT r.id, r.schedule_id, r.from_station_id, r.to_station_id, r.departure_at,
	                  p.amount, r.entry_token,
	                  CASE WHEN e.id IS NOT NULL THEN 1 ELSE 0 END
	           FROM reservations r
	           JOIN payments p ON p.reservation_id = r.id
	           LEFT JOIN entries e ON e.reservation_id = r.id
	           WHERE r.user_id = ? AND p.is_captured = TRUE
	           ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]PurchasedTicket, 0)
	index := make(map[string]int)
	for rows.Next() {
		var t PurchasedTicket
		var entered int
		if err := rows.Scan(
			&t.ReservationID, &t.ScheduleID, &t.FromStation, &t.ToStation, &t.DepartureAt,
			&t.TotalPrice, &t.EntryToken, &entered,
		); err != nil {
			return nil, err
		}
		t.IsEntered = entered == 1
		t.Seats = []string{}
		index[t.ReservationID] = len(tickets)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}
	// Populate seats for all tickets in a single query.
	ids := make([]interface{}, 0, len(tickets))
	placeholders := ""
	for i, t := range tickets {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		ids = append(ids, t.ReservationID)
	}
	seatQuery := `SELECT reservation_id, seat FROM reservation_seats
	              WHERE reservation_id IN (` + placeholders + `)
	              ORDER BY reservation_id, seat`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var rid, seat string
		if err := srows.Scan(&rid, &seat); err != nil {
			return nil, err
		}
		if idx, ok := index[rid]; ok {
			tickets[idx].Seats = append(tickets[idx].Seats, seat)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
