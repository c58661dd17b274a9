package model

import "time"

// Setting holds the single row written at /api/initialize time.  The
// initialization instant anchors the simulated clock for the whole
// cluster: every instance derives the same compressed time from it.
type Setting struct {
	InitializedAt time.Time // settings.initialized_at
}
