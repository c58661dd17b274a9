package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// TrainRepo provides access to trains and their capacity templates.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo constructs a TrainRepo with the given DB handle.
func NewTrainRepo(db *sql.DB) *TrainRepo {
	return &TrainRepo{db: db}
}

// ModelByName retrieves a train model by its name.
func (r *TrainRepo) ModelByName(ctx context.Context, name string) (*model.TrainModel, error) {
	const q = `SELECT name, seat_rows, seat_columns FROM train_models WHERE name = ?`
	var m model.TrainModel
	err := r.db.QueryRowContext(ctx, q, name).Scan(&m.Name, &m.SeatRows, &m.SeatColumns)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainModelNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListModelNames returns the names of all train models.
func (r *TrainRepo) ListModelNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM train_models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Create inserts a train record. On success the train's ID is populated.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train) error {
	const q = `INSERT INTO trains (name, model) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Model)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}
