package fare

import (
	"reflect"
	"testing"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from string
		to   string
		want int
	}{
		{"full outbound run", "A", "E", 4},
		{"single hop outbound", "A", "B", 1},
		{"full return run", "E", "A", 4},
		{"return hop resolves past the turnaround", "C", "B", 5},
		{"outbound middle", "B", "D", 2},
		{"unknown station", "A", "Z", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Distance(tc.from, tc.to); got != tc.want {
				t.Fatalf("Distance(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestStationsBetween(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{"outbound", "A", "C", []string{"A", "B", "C"}},
		{"return", "E", "C", []string{"E", "D", "C"}},
		{"return after traversing the turnaround", "C", "B", []string{"C", "D", "E", "D", "C", "B"}},
		{"invalid journey", "A", "X", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StationsBetween(tc.from, tc.to); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("StationsBetween(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		from, to    string
		seats       []string
		seatColumns int
		wantPrice   int
		wantDisc    bool
	}{
		{
			name: "single seat never discounted",
			from: "A", to: "E",
			seats:       []string{"7-C"},
			seatColumns: 5,
			wantPrice:   4000,
			wantDisc:    false,
		},
		{
			name: "adjacent pair pays full price",
			from: "A", to: "B",
			seats:       []string{"1-A", "1-B"},
			seatColumns: 5,
			wantPrice:   2000,
			wantDisc:    false,
		},
		{
			name: "same row gap discounts",
			from: "A", to: "B",
			seats:       []string{"1-A", "1-C"},
			seatColumns: 5,
			wantPrice:   1000,
			wantDisc:    true,
		},
		{
			name: "split across rows unnecessarily discounts",
			from: "A", to: "B",
			seats:       []string{"1-A", "2-A"},
			seatColumns: 5,
			wantPrice:   1000,
			wantDisc:    true,
		},
		{
			name: "large party filling rows pays full price",
			from: "A", to: "E",
			seats:       []string{"1-A", "1-B", "1-C", "1-D", "1-E", "2-A"},
			seatColumns: 5,
			wantPrice:   24000,
			wantDisc:    false,
		},
		{
			name: "large party spread over too many rows discounts",
			from: "A", to: "E",
			seats:       []string{"1-A", "1-B", "2-A", "2-B", "3-A", "3-B"},
			seatColumns: 5,
			wantPrice:   12000,
			wantDisc:    true,
		},
		{
			name: "narrow train allows more rows",
			from: "A", to: "B",
			seats:       []string{"1-A", "1-B", "2-A", "2-B"},
			seatColumns: 2,
			wantPrice:   4000,
			wantDisc:    false,
		},
		{
			name: "unsorted input is normalized before adjacency checks",
			from: "A", to: "B",
			seats:       []string{"1-B", "1-A"},
			seatColumns: 5,
			wantPrice:   2000,
			wantDisc:    false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, disc := Calculate(tc.from, tc.to, tc.seats, tc.seatColumns)
			if price != tc.wantPrice || disc != tc.wantDisc {
				t.Fatalf("Calculate(%s, %s, %v, %d) = (%d, %v), want (%d, %v)",
					tc.from, tc.to, tc.seats, tc.seatColumns, price, disc, tc.wantPrice, tc.wantDisc)
			}
		})
	}
}
