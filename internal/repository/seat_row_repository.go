package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// SeatRowRepo manages the per-leg seat availability rows. Each
// schedule has one row per (leg, seat_row) combination with five
// column flags; claiming a seat clears its flag on every leg of the
// run, which is why aggregate queries take MIN across legs.
type SeatRowRepo struct {
	db *sql.DB
}

// NewSeatRowRepo constructs a SeatRowRepo with the given DB handle.
func NewSeatRowRepo(db *sql.DB) *SeatRowRepo {
	return &SeatRowRepo{db: db}
}

// columnField maps a seat column letter to its availability column.
// Acting as a whitelist, it keeps request-supplied seat strings out
// of the SQL text.
var columnField = map[string]string{
	"A": "a_is_available",
	"B": "b_is_available",
	"C": "c_is_available",
	"D": "d_is_available",
	"E": "e_is_available",
}

// CreateBulk inserts multiple availability rows in a single statement.
func (r *SeatRowRepo) CreateBulk(ctx context.Context, rows []model.SeatRowAvailability) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO seat_row_reservations
	          (train_id, schedule_id, from_station_id, to_station_id, seat_row,
	           a_is_available, b_is_available, c_is_available, d_is_available, e_is_available) VALUES `
	args := make([]interface{}, 0, len(rows)*10)
	for i, row := range rows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, row.TrainID, row.ScheduleID, row.FromStationID, row.ToStationID, row.SeatRow,
			row.AIsAvailable, row.BIsAvailable, row.CIsAvailable, row.DIsAvailable, row.EIsAvailable)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// RowStatus is the aggregated availability of one seat row across all
// legs of a schedule. Cols is indexed by column (0 = A .. 4 = E); a
// seat is claimable only when it is free on every leg.
type RowStatus struct {
	SeatRow int
	Cols    [5]bool
}

// RowStatuses aggregates availability per seat row for a schedule,
// ordered by row number.
func (r *SeatRowRepo) RowStatuses(ctx context.Context, scheduleID string) ([]RowStatus, error) {
	const q = `SELECT seat_row,
	                  MIN(a_is_available), MIN(b_is_available), MIN(c_is_available),
	                  MIN(d_is_available), MIN(e_is_available)
	           FROM seat_row_reservations
	           WHERE schedule_id = ?
	           GROUP BY seat_row
	           ORDER BY seat_row`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RowStatus
	for rows.Next() {
		var st RowStatus
		var a, b, c, d, e int
		if err := rows.Scan(&st.SeatRow, &a, &b, &c, &d, &e); err != nil {
			return nil, err
		}
		st.Cols = [5]bool{a >= 1, b >= 1, c >= 1, d >= 1, e >= 1}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TotalAvailable counts the seats claimable for the whole run of a
// schedule (free on every leg).
func (r *SeatRowRepo) TotalAvailable(ctx context.Context, scheduleID string) (int, error) {
	const q = `SELECT COALESCE(SUM(a + b + c + d + e), 0)
	           FROM (
	             SELECT MIN(a_is_available) AS a, MIN(b_is_available) AS b,
	                    MIN(c_is_available) AS c, MIN(d_is_available) AS d,
	                    MIN(e_is_available) AS e
	             FROM seat_row_reservations
	             WHERE schedule_id = ?
	             GROUP BY seat_row
	           ) AS available_seats`
	var total int
	if err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// AvailableForLeg sums the availability flags of one directed leg.
// The schedules listing uses it to render the lots/few/none signs.
func (r *SeatRowRepo) AvailableForLeg(ctx context.Context, scheduleID, from, to string) (int, error) {
	const q = `SELECT COALESCE(SUM(a_is_available) + SUM(b_is_available) + SUM(c_is_available)
	                           + SUM(d_is_available) + SUM(e_is_available), 0)
	           FROM seat_row_reservations
	           WHERE schedule_id = ? AND from_station_id = ? AND to_station_id = ?`
	var total int
	if err := r.db.QueryRowContext(ctx, q, scheduleID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// setSeat flips one seat's flag on all legs of a schedule. seat is a
// "row-column" string such as "12-C".
func (r *SeatRowRepo) setSeat(ctx context.Context, scheduleID, seat string, available bool) error {
	rowStr, col, ok := strings.Cut(seat, "-")
	if !ok {
		return fmt.Errorf("malformed seat %q", seat)
	}
	field, ok := columnField[col]
	if !ok {
		return fmt.Errorf("unknown seat column %q", col)
	}
	q := `UPDATE seat_row_reservations SET ` + field + ` = ? WHERE schedule_id = ? AND seat_row = ?`
	_, err := r.db.ExecContext(ctx, q, available, scheduleID, rowStr)
	return err
}

// MarkSeatsUnavailable clears the availability flags of the given
// seats on every leg of the schedule.
func (r *SeatRowRepo) MarkSeatsUnavailable(ctx context.Context, scheduleID string, seats []string) error {
	for _, seat := range seats {
		if err := r.setSeat(ctx, scheduleID, seat, false); err != nil {
			return err
		}
	}
	return nil
}

// MarkSeatsAvailable restores the availability flags of the given
// seats on every leg of the schedule.
func (r *SeatRowRepo) MarkSeatsAvailable(ctx context.Context, scheduleID string, seats []string) error {
	for _, seat := range seats {
		if err := r.setSeat(ctx, scheduleID, seat, true); err != nil {
			return err
		}
	}
	return nil
}
