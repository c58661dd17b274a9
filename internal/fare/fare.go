// Package fare computes ticket prices and the adjacency discount.
// It is a pure leaf: everything here works on station letters and
// "row-column" seat strings, with no storage or clock dependencies.
package fare

import (
	"sort"
	"strings"
)

// BaseTicketPrice is the price of one seat for one hop, in minor
// currency units.
const BaseTicketPrice = 1000

// line lists every stop of an out-and-back run.  The "r" suffix marks
// the return-leg occurrence of a station; it only disambiguates
// indexing and never appears in station ids.
var line = []string{"A", "B", "C", "D", "E", "Dr", "Cr", "Br", "Ar"}

// lineIDs carries the plain station id at each line position.
var lineIDs = []string{"A", "B", "C", "D", "E", "D", "C", "B", "A"}

// seatColumnOrder gives the total order of seat columns within a row.
var seatColumnOrder = []string{"A", "B", "C", "D", "E"}

// resolve picks the line indices for a journey.  When the destination
// letter sorts before the origin the passenger is riding the return
// leg, so the destination resolves to its "r" occurrence.
func resolve(from, to string) (int, int) {
	if from > to {
		to += "r"
	}
	start := indexOf(line, from)
	if start < 0 {
		return -1, -1
	}
	for i := start; i < len(line); i++ {
		if line[i] == to {
			return start, i
		}
	}
	return -1, -1
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

// Distance returns the number of hops between from and to along the
// correct direction of travel, or 0 when the pair is not a valid
// journey.
func Distance(from, to string) int {
	start, end := resolve(from, to)
	if start < 0 || end < 0 {
		return 0
	}
	return end - start
}

// StationsBetween returns the station ids visited from origin to
// destination inclusive, in travel order.
func StationsBetween(from, to string) []string {
	start, end := resolve(from, to)
	if start < 0 || end < 0 {
		return nil
	}
	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, lineIDs[i])
	}
	return out
}

// Calculate prices a reservation of the given seats for the journey
// from -> to on a train with seatColumns seats per row.  The price is
// halved when the group is spread across more rows than
// ceil(len(seats)/seatColumns) allows, or when two seats share a row
// without being adjacent columns.  A single seat is never discounted.
func Calculate(from, to string, seats []string, seatColumns int) (price int, discounted bool) {
	distance := Distance(from, to)
	if len(seats) == 1 {
		return BaseTicketPrice * distance, false
	}

	allowedGroups := (len(seats) + seatColumns - 1) / seatColumns

	sorted := make([]string, len(seats))
	copy(sorted, seats)
	sort.Strings(sorted)

	fullPrice := BaseTicketPrice * distance * len(seats)
	discountedPrice := fullPrice / 2

	rows := map[string]struct{}{}
	for _, seat := range sorted {
		row, _, _ := strings.Cut(seat, "-")
		rows[row] = struct{}{}
	}
	// Spread over more rows than the party size requires.
	if len(rows) > allowedGroups {
		return discountedPrice, true
	}

	for i := 1; i < len(sorted); i++ {
		prevRow, prevCol, _ := strings.Cut(sorted[i-1], "-")
		row, col, _ := strings.Cut(sorted[i], "-")
		if row != prevRow {
			continue
		}
		// Same row: the column must be the immediate successor.
		next := indexOf(seatColumnOrder, prevCol) + 1
		if next >= len(seatColumnOrder) || seatColumnOrder[next] != col {
			return discountedPrice, true
		}
	}

	return fullPrice, false
}
