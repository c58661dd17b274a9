package model

// Station is one of the five stops on the line.  Stations are
// identified by a single letter (A through E) and laid out as a
// linear sequence; trains run out and back along it
// (A→B→C→D→E→D→C→B→A).
//
// Fields:
//  ID   – single-letter station identifier ("A".."E").
//  Name – display name shown to passengers.
type Station struct {
	ID   string // stations.id
	Name string // stations.name
}

// StationIDs lists the station identifiers in forward-leg order.
var StationIDs = []string{"A", "B", "C", "D", "E"}

// Stations is the static set of stops on the line.  The line never
// changes during a contest run so the list is compiled in.
var Stations = []Station{
	{ID: "A", Name: "Arena"},
	{ID: "B", Name: "Bridge"},
	{ID: "C", Name: "Cave"},
	{ID: "D", Name: "Dock"},
	{ID: "E", Name: "Edge"},
}

// StationName resolves a station id to its display name.  Unknown ids
// return the id unchanged.
func StationName(id string) string {
	for _, s := range Stations {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

// ValidStationID reports whether id names one of the five stations.
func ValidStationID(id string) bool {
	for _, s := range StationIDs {
		if s == id {
			return true
		}
	}
	return false
}
