// Package platform defines the Platform Abstraction Interface: the set of
// capability interfaces every zonal ECU and the Safety Controller use to
// reach the hardware they run on. A runnable, the E2E codec, the scheduler
// and the safety engine are all written against these interfaces and never
// against a concrete bus or chip, so the same code drives the in-process
// simulation, real SocketCAN hardware, or a fault-injecting test harness.
package platform

// Frame is a CAN 2.0B frame: up to 8 data bytes addressed by an 11 or
// 29-bit identifier. DLC is the number of valid bytes in Data.
type Frame struct {
	ID   uint32
	DLC  uint8
	Data [8]byte
}

// CAN is the capability set a runnable needs to exchange CAN frames. A
// Mailbox is a receive slot pre-associated with one CAN ID by Subscribe;
// Receive is always non-blocking, returning ok=false when the mailbox has
// nothing new since the last poll.
type CAN interface {
	Transmit(frame Frame) error
	Receive(mailbox int) (Frame, bool)
	Subscribe(mailbox int, id uint32) error
	IsBusOff() bool
	IsBusSilent() bool
}

// GPIO is the capability set for discrete digital I/O: relay drive, fault
// LEDs, self-test readback loops. Levels are 0 (low) or 1 (high).
type GPIO interface {
	Set(port, pin uint8, level uint8)
	Get(port, pin uint8) uint8
}

// NVM is the capability set for non-volatile storage: DTC slots and
// calibration blocks. Blocks are addressed by a small integer id rather
// than a byte offset, keeping callers free of any flash-sector layout.
type NVM interface {
	ReadBlock(id uint16, dst []byte) error
	WriteBlock(id uint16, src []byte) error
}

// Clock is the capability set for time. NowMicros is a free-running
// counter, not wall-clock time — the simulated adapter advances it one
// tick period at a time so tests stay deterministic.
type Clock interface {
	NowMicros() uint32
}

// Watchdog is the capability set for the external watchdog's supervision:
// the scheduler reports each supervised entity's activity through
// Checkpoint, at most once per tick (see pkg/scheduler). The Safety
// Controller's WDI feed gate (pkg/safety.Watchdog) does not read these
// checkpoints.
type Watchdog interface {
	Checkpoint(supervisedEntity uint8)
}
