package simulated

import "sync"

// Watchdog records which supervised entities have checked in since the
// last Reset, so tests can assert the scheduler checkpoints each
// supervised entity at most once per tick (see pkg/scheduler).
type Watchdog struct {
	mu   sync.Mutex
	seen map[uint8]int
}

// NewWatchdog returns an empty recorder.
func NewWatchdog() *Watchdog {
	return &Watchdog{seen: make(map[uint8]int)}
}

// Checkpoint records a checkpoint notification for supervisedEntity.
func (w *Watchdog) Checkpoint(supervisedEntity uint8) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[supervisedEntity]++
}

// CountSince returns how many checkpoints supervisedEntity has received
// since the watchdog was created or last Reset.
func (w *Watchdog) CountSince(supervisedEntity uint8) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[supervisedEntity]
}

// Reset clears all recorded checkpoints, typically called once per tick
// boundary by a test driving the scheduler manually.
func (w *Watchdog) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[uint8]int)
}
