// Package simulated implements an in-process platform.CAN bus: every ECU
// in a simulation attaches a Bus to the same Network, and a Transmit on one
// Bus is delivered to the mailboxes of every other attached Bus. It plays
// the role the teacher's pkg/can/virtual plays for CANopen testing, but
// collapses the TCP-loopback broker down to a shared in-memory struct,
// since a single Go process never needs the wire framing a cross-process
// broker requires.
package simulated

import (
	"sync"

	"github.com/taktflow/zecu-core/internal/framebuf"
	"github.com/taktflow/zecu-core/pkg/platform"
)

// Network is a shared virtual bus segment. Zero value is ready to use.
type Network struct {
	mu      sync.Mutex
	buses   []*Bus
	busOff  bool
	silence bool
}

// Attach creates a new Bus handle on this network.
func (n *Network) Attach() *Bus {
	n.mu.Lock()
	defer n.mu.Unlock()
	b := &Bus{
		network:     n,
		subscribers: make(map[int]uint32),
		mailboxes:   make(map[int]*framebuf.Ring),
	}
	n.buses = append(n.buses, b)
	return b
}

// SetBusOff forces every attached Bus's IsBusOff to the given state,
// modelling a shared-medium bus-off condition for fault-injection tests.
func (n *Network) SetBusOff(off bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.busOff = off
}

// SetSilent forces every attached Bus's IsBusSilent to the given state.
func (n *Network) SetSilent(silent bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.silence = silent
}

func (n *Network) deliver(from *Bus, frame platform.Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range n.buses {
		if b == from {
			continue
		}
		b.enqueue(frame)
	}
}

// Bus is one ECU's attachment point to a Network. It implements
// platform.CAN.
type Bus struct {
	network *Network

	mu          sync.Mutex
	subscribers map[int]uint32 // mailbox -> CAN ID
	mailboxes   map[int]*framebuf.Ring
}

const mailboxDepth = 4

func (b *Bus) enqueue(frame platform.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for mailbox, id := range b.subscribers {
		if id == frame.ID {
			b.mailboxes[mailbox].Push(framebuf.Frame{Data: frame.Data, DLC: frame.DLC})
		}
	}
}

// Transmit broadcasts frame to every other Bus attached to the same
// Network. It never loops back to the sender's own mailboxes, matching a
// real transceiver's behaviour.
func (b *Bus) Transmit(frame platform.Frame) error {
	if b.IsBusOff() {
		return platform.ErrBusOff
	}
	b.network.deliver(b, frame)
	return nil
}

// Receive pops the oldest queued frame for mailbox, if any.
func (b *Bus) Receive(mailbox int) (platform.Frame, bool) {
	b.mu.Lock()
	ring, ok := b.mailboxes[mailbox]
	b.mu.Unlock()
	if !ok {
		return platform.Frame{}, false
	}
	f, ok := ring.Pop()
	if !ok {
		return platform.Frame{}, false
	}
	return platform.Frame{DLC: f.DLC, Data: f.Data}, true
}

// Subscribe associates mailbox with id, creating the mailbox's ring buffer
// on first use.
func (b *Bus) Subscribe(mailbox int, id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[mailbox] = id
	if _, ok := b.mailboxes[mailbox]; !ok {
		b.mailboxes[mailbox] = framebuf.NewRing(mailboxDepth)
	}
	return nil
}

// IsBusOff reports the network-wide simulated bus-off condition.
func (b *Bus) IsBusOff() bool {
	b.network.mu.Lock()
	defer b.network.mu.Unlock()
	return b.network.busOff
}

// IsBusSilent reports the network-wide simulated silence condition.
func (b *Bus) IsBusSilent() bool {
	b.network.mu.Lock()
	defer b.network.mu.Unlock()
	return b.network.silence
}
