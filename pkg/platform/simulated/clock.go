package simulated

import "sync/atomic"

// Clock is a free-running microsecond counter the test harness advances
// explicitly, rather than wall-clock time — this is what keeps scheduler
// and heartbeat-timeout tests deterministic regardless of host load.
type Clock struct {
	micros uint32
}

// NewClock returns a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NowMicros returns the current counter value.
func (c *Clock) NowMicros() uint32 {
	return atomic.LoadUint32(&c.micros)
}

// Advance moves the counter forward by delta microseconds, wrapping on
// overflow the same way a hardware free-running timer does.
func (c *Clock) Advance(delta uint32) {
	atomic.AddUint32(&c.micros, delta)
}
