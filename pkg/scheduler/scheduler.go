// Package scheduler implements the cooperative, single-threaded runnable
// dispatcher: a static table of (function, period, priority,
// supervised-entity) descriptors fired in strict priority order on every
// 1 ms tick, with one watchdog checkpoint per supervised entity per tick.
// There is no preemption — a runnable runs to completion before the next
// one is considered, matching the teacher's own cooperative
// NodeProcessor.main/background ticker loops.
package scheduler

import "github.com/taktflow/zecu-core/pkg/platform"

// MaxRunnables bounds the size of a single scheduler's descriptor table.
const MaxRunnables = 16

// NoSupervision marks a runnable as having no associated supervised
// entity — its dispatch never emits a watchdog checkpoint.
const NoSupervision uint8 = 0xFF

// Runnable is one entry in the static dispatch table.
type Runnable struct {
	Name             string
	Func             func() error
	PeriodMs         uint32
	Priority         int
	SupervisedEntity uint8
}

// Scheduler dispatches a fixed Runnable table against a 1 ms tick
// counter. It is not safe for concurrent use — it is driven by exactly
// one cooperative loop per ECU.
type Scheduler struct {
	runnables []Runnable
	tick      uint32
	watchdog  platform.Watchdog
	unhealthy bool
}

// NewScheduler returns a Scheduler that checkpoints watchdog once per
// tick per supervised entity.
func NewScheduler(watchdog platform.Watchdog) *Scheduler {
	return &Scheduler{watchdog: watchdog}
}

// Init installs config as the dispatch table and resets the tick counter
// to zero. It rejects a config whose length exceeds MaxRunnables.
func (s *Scheduler) Init(config []Runnable) error {
	if len(config) > MaxRunnables {
		return ErrTooManyRunnables
	}
	s.runnables = append([]Runnable(nil), config...)
	s.tick = 0
	s.unhealthy = false
	return nil
}

// IsHealthy reports whether every runnable invoked so far has returned
// without error. Once false, it never becomes true again except via Init.
func (s *Scheduler) IsHealthy() bool {
	return !s.unhealthy
}

// Tick advances the tick counter by one and dispatches every eligible
// runnable in strict descending-priority order, ties broken by table
// order. A runnable returning an error is fatal: the scheduler marks
// itself unhealthy and stops dispatching for the remainder of this tick
// (and every subsequent one, until Init is called again) — the failure is
// never swallowed.
func (s *Scheduler) Tick() error {
	s.tick++
	if s.unhealthy {
		return ErrUnhealthy
	}

	visited := make([]bool, len(s.runnables))
	checkpointed := make(map[uint8]bool)

	for pass := 0; pass < len(s.runnables); pass++ {
		best := -1
		for i, r := range s.runnables {
			if visited[i] {
				continue
			}
			if r.Func == nil || r.PeriodMs == 0 || s.tick%r.PeriodMs != 0 {
				visited[i] = true
				continue
			}
			if best == -1 || r.Priority > s.runnables[best].Priority {
				best = i
			}
		}
		if best == -1 {
			break
		}
		visited[best] = true
		r := s.runnables[best]
		if err := r.Func(); err != nil {
			s.unhealthy = true
			return err
		}
		if r.SupervisedEntity != NoSupervision && !checkpointed[r.SupervisedEntity] {
			if s.watchdog != nil {
				s.watchdog.Checkpoint(r.SupervisedEntity)
			}
			checkpointed[r.SupervisedEntity] = true
		}
	}
	return nil
}

// CurrentTick returns the tick counter's current value, mainly for tests
// asserting dispatch timing.
func (s *Scheduler) CurrentTick() uint32 {
	return s.tick
}
