package clock

import (
	"testing"
	"time"
)

func TestSimulatedCurrentTime(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"at anchor", 0, "00:00"},
		{"one second is ten minutes", 1 * time.Second, "00:10"},
		{"six seconds is one hour", 6 * time.Second, "01:00"},
		{"sixty five seconds", 65 * time.Second, "10:50"},
		{"sub-second progress is ignored", 900 * time.Millisecond, "00:00"},
		{"day end", 144 * time.Second, "24:00"},
		{"frozen past day end", 10 * time.Minute, "24:00"},
		{"wall clock before anchor clamps to zero", -3 * time.Second, "00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim := NewSimulated(anchor, NewFixed(anchor.Add(tc.elapsed)))
			if got := sim.CurrentTime(); got != tc.want {
				t.Fatalf("CurrentTime() after %v = %q, want %q", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestSimulatedDeparted(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	// 65 real seconds -> simulated 10:50.
	sim := NewSimulated(anchor, NewFixed(anchor.Add(65*time.Second)))

	if !sim.Departed("10:40") {
		t.Fatalf("expected 10:40 to have departed at 10:50")
	}
	if sim.Departed("10:50") {
		t.Fatalf("expected 10:50 not to count as departed at 10:50")
	}
	if sim.Departed("11:00") {
		t.Fatalf("expected 11:00 not to have departed at 10:50")
	}
}

func TestAddMinutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		add  int
		want string
	}{
		{"09:05", 10, "09:15"},
		{"09:55", 10, "10:05"},
		{"23:30", 70, "24:40"},
		{"00:00", 0, "00:00"},
	}
	for _, tc := range cases {
		if got := AddMinutes(tc.in, tc.add); got != tc.want {
			t.Fatalf("AddMinutes(%q, %d) = %q, want %q", tc.in, tc.add, got, tc.want)
		}
	}
}

func TestHolderReplace(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	wall := NewFixed(anchor.Add(6 * time.Second))

	h := NewHolder(NewSimulated(anchor, wall))
	if got := h.CurrentTime(); got != "01:00" {
		t.Fatalf("CurrentTime() = %q, want 01:00", got)
	}

	// Re-anchoring at the wall instant restarts the simulated day.
	h.Replace(NewSimulated(anchor.Add(6*time.Second), wall))
	if got := h.CurrentTime(); got != "00:00" {
		t.Fatalf("CurrentTime() after Replace = %q, want 00:00", got)
	}
	if h.Departed("00:00") {
		t.Fatalf("nothing should have departed at 00:00")
	}
}
