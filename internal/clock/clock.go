// Package clock provides the compressed simulated day used to gate
// departures, refunds and schedule listings.  One real second equals
// ten simulated minutes; once a full day has elapsed the display time
// freezes at 24:00.
package clock

import (
	"fmt"
	"time"
)

// Clock supplies wall-clock time.  Injecting it keeps the simulated
// clock deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always reports the same instant.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Simulated derives "HH:MM" display times from wall-clock seconds
// elapsed since a stored initialization instant.  Construct one
// instance at process start and pass it to everything that needs the
// current simulated time; all instances in a cluster read the same
// initialization instant, so their outputs agree.
type Simulated struct {
	initializedAt time.Time
	wall          Clock
}

// NewSimulated builds a simulated clock anchored at initializedAt.
func NewSimulated(initializedAt time.Time, wall Clock) *Simulated {
	return &Simulated{initializedAt: initializedAt.UTC(), wall: wall}
}

// CurrentTime returns the simulated time of day as "HH:MM".  Each
// elapsed real second advances the simulated day by ten minutes; the
// result saturates at "24:00" and never moves past it.
func (s *Simulated) CurrentTime() string {
	elapsed := s.wall.Now().Sub(s.initializedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := int(elapsed.Seconds())

	hours := seconds / 6
	if hours >= 24 {
		return "24:00"
	}
	minutes := seconds % 6 * 10
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// Departed reports whether the given "HH:MM" departure time is in the
// simulated past.  Times compare lexically, which is exact for
// zero-padded HH:MM strings.
func (s *Simulated) Departed(departureAt string) bool {
	return departureAt < s.CurrentTime()
}

// AddMinutes adds n minutes to an "HH:MM" time string.  Hours are not
// wrapped at 24: schedule generation wants "25:10" rather than a
// rollover into the next day, matching the frozen 24:00 world end.
func AddMinutes(t string, n int) string {
	var h, m int
	fmt.Sscanf(t, "%d:%d", &h, &m)
	h += (m + n) / 60
	m = (m + n) % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
