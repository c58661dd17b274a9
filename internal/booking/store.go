package booking

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// SQLWriter implements Writer on top of the relational repositories.
// Reservation, seat claims and payment commit or roll back together,
// so a reservation can never exist without its payment row.
type SQLWriter struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	payments     *repository.PaymentRepo
}

// NewSQLWriter constructs a SQLWriter.
func NewSQLWriter(db *sql.DB, reservations *repository.ReservationRepo, payments *repository.PaymentRepo) *SQLWriter {
	return &SQLWriter{db: db, reservations: reservations, payments: payments}
}

// CreateBooking persists the reservation, its seats and the
// uncaptured payment in one transaction.
func (w *SQLWriter) CreateBooking(ctx context.Context, res *model.Reservation, seats []string, pay *model.Payment) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := w.reservations.CreateTx(ctx, tx, res); err != nil {
		return err
	}
	if err := w.reservations.CreateSeatsBulkTx(ctx, tx, res.ID, seats); err != nil {
		return err
	}
	if err := w.payments.CreateTx(ctx, tx, pay); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
