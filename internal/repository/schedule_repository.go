package repository // repository defines data access for train schedules

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparisons

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// ScheduleRepo provides methods to work with train schedules in the
// database. Schedules are immutable once created, so there are no
// update methods.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying handle so callers can open transactions
// spanning several repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

const scheduleColumns = `id, train_id,
	departure_at_station_a_to_b, departure_at_station_b_to_c,
	departure_at_station_c_to_d, departure_at_station_d_to_e,
	departure_at_station_e_to_d, departure_at_station_d_to_c,
	departure_at_station_c_to_b, departure_at_station_b_to_a`

func scanSchedule(row interface{ Scan(...any) error }) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID, &s.TrainID,
		&s.DepartureAtStationAToB, &s.DepartureAtStationBToC,
		&s.DepartureAtStationCToD, &s.DepartureAtStationDToE,
		&s.DepartureAtStationEToD, &s.DepartureAtStationDToC,
		&s.DepartureAtStationCToB, &s.DepartureAtStationBToA,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a schedule by its id.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM train_schedules WHERE id = ?`
	return scanSchedule(r.db.QueryRowContext(ctx, q, id))
}

// NextAfter returns the schedule whose forward-leg departure is the
// earliest one strictly later than departureAtAToB. It returns
// ErrScheduleNotFound when no later schedule exists on the line.
func (r *ScheduleRepo) NextAfter(ctx context.Context, departureAtAToB string) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM train_schedules
	           WHERE departure_at_station_a_to_b > ?
	           ORDER BY departure_at_station_a_to_b
	           LIMIT 1`
	return scanSchedule(r.db.QueryRowContext(ctx, q, departureAtAToB))
}

// ListDepartingFrom returns up to limit schedules whose forward-leg
// departure is at or after the given "HH:MM" time, ordered by
// departure.
func (r *ScheduleRepo) ListDepartingFrom(ctx context.Context, from string, limit int) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM train_schedules
	           WHERE departure_at_station_a_to_b >= ?
	           ORDER BY departure_at_station_a_to_b
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByTrain returns all schedules of one train ordered by departure.
func (r *ScheduleRepo) ListByTrain(ctx context.Context, trainID uint64) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM train_schedules
	           WHERE train_id = ?
	           ORDER BY departure_at_station_a_to_b`
	rows, err := r.db.QueryContext(ctx, q, trainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListIDs returns every schedule id. Used when rebuilding the seat
// lists after /api/initialize.
func (r *ScheduleRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM train_schedules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts a single schedule record.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const q = `INSERT INTO train_schedules (` + scheduleColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.TrainID,
		s.DepartureAtStationAToB, s.DepartureAtStationBToC,
		s.DepartureAtStationCToD, s.DepartureAtStationDToE,
		s.DepartureAtStationEToD, s.DepartureAtStationDToC,
		s.DepartureAtStationCToB, s.DepartureAtStationBToA,
	)
	return err
}

// ModelForSchedule returns the capacity template of the train running
// the given schedule.
func (r *ScheduleRepo) ModelForSchedule(ctx context.Context, scheduleID string) (*model.TrainModel, error) {
	const q = `SELECT tm.name, tm.seat_rows, tm.seat_columns
	           FROM train_schedules ts
	           JOIN trains t ON t.id = ts.train_id
	           JOIN train_models tm ON tm.name = t.model
	           WHERE ts.id = ?`
	var m model.TrainModel
	err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&m.Name, &m.SeatRows, &m.SeatColumns)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainModelNotFound
		}
		return nil, err
	}
	return &m, nil
}
