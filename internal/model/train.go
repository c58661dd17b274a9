package model

// TrainModel is a static capacity template shared by many trains.
// A train of a given model has SeatRows rows in a "2-2" style layout
// with SeatColumns seats per row (columns are lettered A..E, so
// SeatColumns must be between 1 and 5).
//
// Fields:
//  Name        – model name, primary key.
//  SeatRows    – number of seat rows.
//  SeatColumns – seats per row (1..5).
type TrainModel struct {
	Name        string // train_models.name
	SeatRows    int    // train_models.seat_rows
	SeatColumns int    // train_models.seat_columns
}

// Capacity returns the total number of seats for this model.
func (m TrainModel) Capacity() int {
	return m.SeatRows * m.SeatColumns
}

// Train is a physical train assigned to a model.  Each train runs
// several schedules per day.
//
// Fields:
//  ID    – primary key identifier.
//  Name  – display name (e.g. "Train 12").
//  Model – FK -> train_models.name.
type Train struct {
	ID    uint64 // trains.id
	Name  string // trains.name
	Model string // trains.model
}
