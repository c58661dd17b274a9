package model

// Leg is one directed hop between two adjacent stations on the line.
type Leg struct {
	From string
	To   string
}

// ScheduleLegs lists the eight legs of an out-and-back run in travel
// order.  The forward leg visits A through E, the return leg mirrors
// it back to A.
var ScheduleLegs = []Leg{
	{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"},
	{"E", "D"}, {"D", "C"}, {"C", "B"}, {"B", "A"},
}

// Schedule identifies one run of a train on the line.  It carries a
// fixed departure time for each of the eight legs and is immutable
// once created.
//
// Fields:
//  ID      – primary key, "<train name>-<run number>".
//  TrainID – FK -> trains.id.
//  DepartureAtStationXToY – "HH:MM" departure time of each leg.
type Schedule struct {
	ID      string // train_schedules.id
	TrainID uint64 // train_schedules.train_id

	DepartureAtStationAToB string // train_schedules.departure_at_station_a_to_b
	DepartureAtStationBToC string // train_schedules.departure_at_station_b_to_c
	DepartureAtStationCToD string // train_schedules.departure_at_station_c_to_d
	DepartureAtStationDToE string // train_schedules.departure_at_station_d_to_e
	DepartureAtStationEToD string // train_schedules.departure_at_station_e_to_d
	DepartureAtStationDToC string // train_schedules.departure_at_station_d_to_c
	DepartureAtStationCToB string // train_schedules.departure_at_station_c_to_b
	DepartureAtStationBToA string // train_schedules.departure_at_station_b_to_a
}

// Departures returns the per-leg departure times in travel order,
// matching ScheduleLegs index for index.
func (s Schedule) Departures() []string {
	return []string{
		s.DepartureAtStationAToB,
		s.DepartureAtStationBToC,
		s.DepartureAtStationCToD,
		s.DepartureAtStationDToE,
		s.DepartureAtStationEToD,
		s.DepartureAtStationDToC,
		s.DepartureAtStationCToB,
		s.DepartureAtStationBToA,
	}
}

// DepartureForLeg returns the departure time of the given directed leg,
// or the empty string when the leg does not exist on the line.
func (s Schedule) DepartureForLeg(from, to string) string {
	deps := s.Departures()
	for i, leg := range ScheduleLegs {
		if leg.From == from && leg.To == to {
			return deps[i]
		}
	}
	return ""
}
