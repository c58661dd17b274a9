package clock

import "sync"

// Holder hands out the process's simulated clock and lets
// /api/initialize swap in a freshly anchored one. It satisfies the
// same read interface as *Simulated, so dependents hold the Holder
// and always see the current anchor.
type Holder struct {
	mu  sync.RWMutex
	sim *Simulated
}

// NewHolder wraps an initial simulated clock.
func NewHolder(sim *Simulated) *Holder {
	return &Holder{sim: sim}
}

// Replace swaps in a new simulated clock.
func (h *Holder) Replace(sim *Simulated) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sim = sim
}

// CurrentTime reports the simulated time of the current anchor.
func (h *Holder) CurrentTime() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sim.CurrentTime()
}

// Departed reports whether the departure time is in the simulated past.
func (h *Holder) Departed(departureAt string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sim.Departed(departureAt)
}
