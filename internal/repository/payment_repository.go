package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// PaymentRepo manages the one-per-reservation payment rows and the
// revenue rollups served to administrators.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo with the given DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// CreateTx inserts an uncaptured payment within an existing
// transaction. On success the payment's ID is populated.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (user_id, reservation_id, amount) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.UserID, p.ReservationID, p.Amount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByReservation retrieves the payment attached to a reservation.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID string) (*model.Payment, error) {
	const q = `SELECT id, user_id, reservation_id, amount, is_captured, is_refunded, created_at, updated_at
	           FROM payments WHERE reservation_id = ?`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&p.ID, &p.UserID, &p.ReservationID, &p.Amount,
		&p.IsCaptured, &p.IsRefunded, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// MarkCaptured flips is_captured after the payment app accepted the
// charge.
func (r *PaymentRepo) MarkCaptured(ctx context.Context, reservationID string) error {
	const q = `UPDATE payments SET is_captured = TRUE, updated_at = CURRENT_TIMESTAMP
	           WHERE reservation_id = ?`
	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}

// MarkRefunded records a refund: captured and refunded can never be
// true at the same time, so the capture flag clears in the same
// statement.
func (r *PaymentRepo) MarkRefunded(ctx context.Context, reservationID string) error {
	const q = `UPDATE payments SET is_captured = FALSE, is_refunded = TRUE, updated_at = CURRENT_TIMESTAMP
	           WHERE reservation_id = ?`
	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}

// TotalSales sums the captured payments of reservations whose
// passengers entered the gate.
func (r *PaymentRepo) TotalSales(ctx context.Context) (int, error) {
	const q = `SELECT COALESCE(SUM(p.amount), 0)
	           FROM payments p
	           JOIN entries e ON e.reservation_id = p.reservation_id
	           WHERE p.is_captured = TRUE`
	var total int
	if err := r.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// TotalRefunds sums all refunded payments.
func (r *PaymentRepo) TotalRefunds(ctx context.Context) (int, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE is_refunded = TRUE`
	var total int
	if err := r.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// TrainSales is one train's revenue rollup for the admin dashboard.
type TrainSales struct {
	TrainName        string `json:"train_name"`
	TicketsSold      int    `json:"tickets_sold"`
	PendingRevenue   int    `json:"pending_revenue"`
	ConfirmedRevenue int    `json:"confirmed_revenue"`
	Refunds          int    `json:"refunds"`
}

// ListTrainSales aggregates ticket counts and revenue per train.
// Revenue of captured payments counts as pending until the passenger
// enters the gate, then as confirmed.
func (r *PaymentRepo) ListTrainSales(ctx context.Context) ([]TrainSales, error) {
	const q = `SELECT t.name,
	                  COALESCE(SUM(ticket_counts.ticket_count), 0),
	                  COALESCE(SUM(CASE WHEN e.id IS NULL AND p.is_captured THEN p.amount ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN e.id IS NOT NULL AND p.is_captured THEN p.amount ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN p.is_refunded THEN p.amount ELSE 0 END), 0)
	           FROM trains t
	           JOIN train_schedules s ON t.id = s.train_id
	           JOIN reservations r ON s.id = r.schedule_id
	           JOIN payments p ON r.id = p.reservation_id
	           LEFT JOIN entries e ON r.id = e.reservation_id
	           LEFT JOIN (
	             SELECT reservation_id, COUNT(*) AS ticket_count
	             FROM reservation_seats
	             GROUP BY reservation_id
	           ) ticket_counts ON r.id = ticket_counts.reservation_id AND p.is_captured = TRUE
	           GROUP BY t.id, t.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]TrainSales, 0)
	for rows.Next() {
		var s TrainSales
		if err := rows.Scan(&s.TrainName, &s.TicketsSold, &s.PendingRevenue, &s.ConfirmedRevenue, &s.Refunds); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}
