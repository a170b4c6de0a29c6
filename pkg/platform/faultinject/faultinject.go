// Package faultinject wraps a platform.CAN with controllable frame drops,
// payload corruption and forced bus states, for exercising pkg/e2e and
// pkg/safety's fault paths without real hardware. This is the "test
// adapter" pattern the teacher's CAN package leaves as an exercise for
// callers (a Bus is just an interface; nothing stops one implementation
// from wrapping another).
package faultinject

import (
	"sync"

	"github.com/taktflow/zecu-core/pkg/platform"
)

// Bus wraps an underlying platform.CAN and lets a test toggle fault modes
// on transmitted frames before they reach the wrapped bus.
type Bus struct {
	underlying platform.CAN

	mu           sync.Mutex
	dropNext     map[uint32]int  // CAN ID -> remaining frames to drop
	corruptNext  map[uint32]int  // CAN ID -> remaining frames to corrupt
	corruptByte  int             // data byte index flipped when corrupting
	forcedOff    bool
	forceOffUsed bool
	forcedSilent bool
	forceSilUsed bool
}

// Wrap returns a Bus that passes every call through to underlying until a
// fault is armed.
func Wrap(underlying platform.CAN) *Bus {
	return &Bus{
		underlying:  underlying,
		dropNext:    make(map[uint32]int),
		corruptNext: make(map[uint32]int),
		corruptByte: 1, // byte 1 carries the E2E CRC in every protected frame
	}
}

// DropNext arms count future transmits of id to be silently discarded.
func (b *Bus) DropNext(id uint32, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropNext[id] = count
}

// CorruptNext arms count future transmits of id to have their corruptByte
// XORed with 0xFF before delivery, simulating a bit flip on the wire.
func (b *Bus) CorruptNext(id uint32, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.corruptNext[id] = count
}

// ForceBusOff overrides IsBusOff regardless of the wrapped bus's own state.
func (b *Bus) ForceBusOff(off bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forcedOff = off
	b.forceOffUsed = true
}

// ForceBusSilent overrides IsBusSilent regardless of the wrapped bus.
func (b *Bus) ForceBusSilent(silent bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forcedSilent = silent
	b.forceSilUsed = true
}

// Transmit applies any armed fault for frame.ID, then delegates to the
// wrapped bus unless the frame was dropped.
func (b *Bus) Transmit(frame platform.Frame) error {
	b.mu.Lock()
	if n := b.dropNext[frame.ID]; n > 0 {
		b.dropNext[frame.ID] = n - 1
		b.mu.Unlock()
		return nil
	}
	if n := b.corruptNext[frame.ID]; n > 0 {
		b.corruptNext[frame.ID] = n - 1
		if int(frame.DLC) > b.corruptByte {
			frame.Data[b.corruptByte] ^= 0xFF
		}
	}
	b.mu.Unlock()
	return b.underlying.Transmit(frame)
}

// Receive delegates directly; faults are only injected on the transmit
// path, matching how a bit error actually appears to every receiver.
func (b *Bus) Receive(mailbox int) (platform.Frame, bool) {
	return b.underlying.Receive(mailbox)
}

// Subscribe delegates directly.
func (b *Bus) Subscribe(mailbox int, id uint32) error {
	return b.underlying.Subscribe(mailbox, id)
}

// IsBusOff reports the forced state if one was set, else the wrapped
// bus's own state.
func (b *Bus) IsBusOff() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.forceOffUsed {
		return b.forcedOff
	}
	return b.underlying.IsBusOff()
}

// IsBusSilent reports the forced state if one was set, else the wrapped
// bus's own state.
func (b *Bus) IsBusSilent() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.forceSilUsed {
		return b.forcedSilent
	}
	return b.underlying.IsBusSilent()
}
