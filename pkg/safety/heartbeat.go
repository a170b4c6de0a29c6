package safety

import "github.com/taktflow/zecu-core/pkg/platform"

type peerState struct {
	counter        uint32
	timedOut       bool
	confirmCounter uint32
	confirmed      bool
}

// peerLED maps a monitored ECU index to its fault-LED GPIO pin, grounded
// on sc_heartbeat.c's ecu_led_pin lookup table.
var peerLED = map[uint8]uint8{
	ECUCvc: PinLEDCvc,
	ECUFzc: PinLEDFzc,
	ECURzc: PinLEDRzc,
}

// HeartbeatMonitor fuses periodic heartbeat reception from every
// monitored peer ECU into a latched, two-stage confirmed-fault signal:
// a peer crossing HeartbeatTimeoutTicks without reception first drives its
// fault LED and starts a confirmation hold-off; only after
// HeartbeatConfirmTicks more does the fault become terminal.
type HeartbeatMonitor struct {
	gpio  platform.GPIO
	peers [ECUCount]peerState
}

// NewHeartbeatMonitor returns a monitor driving LEDs through gpio.
func NewHeartbeatMonitor(gpio platform.GPIO) *HeartbeatMonitor {
	return &HeartbeatMonitor{gpio: gpio}
}

// Init resets every peer to its startup state.
func (h *HeartbeatMonitor) Init() {
	h.peers = [ECUCount]peerState{}
	for peer := range peerLED {
		h.gpio.Set(GIOPortA, peerLED[peer], 0)
	}
}

// NotifyRx records a valid heartbeat reception from peer. If peer is
// already confirmed, this is a no-op — confirmation is terminal. Otherwise
// it resets the timeout counter, clears timed_out, clears the
// confirmation counter, and drives the peer's fault LED low — this is
// what makes a resume during the confirmation window clear the LED.
func (h *HeartbeatMonitor) NotifyRx(peer uint8) {
	if int(peer) >= ECUCount {
		return
	}
	state := &h.peers[peer]
	if state.confirmed {
		return
	}
	state.counter = 0
	state.timedOut = false
	state.confirmCounter = 0
	if pin, ok := peerLED[peer]; ok {
		h.gpio.Set(GIOPortA, pin, 0)
	}
}

// Tick advances every non-confirmed peer's counters by one tick.
func (h *HeartbeatMonitor) Tick() {
	for i := range h.peers {
		state := &h.peers[i]
		if state.confirmed {
			continue
		}
		if state.counter < HeartbeatTimeoutTicks+HeartbeatConfirmTicks {
			state.counter++
		}
		wasTimedOut := state.timedOut
		if state.counter >= HeartbeatTimeoutTicks {
			if !wasTimedOut {
				state.timedOut = true
				if pin, ok := peerLED[uint8(i)]; ok {
					h.gpio.Set(GIOPortA, pin, 1)
				}
			} else {
				state.confirmCounter++
			}
			if state.confirmCounter >= HeartbeatConfirmTicks {
				state.confirmed = true
			}
		}
	}
}

// Confirmed reports whether peer's heartbeat fault is latched terminal.
func (h *HeartbeatMonitor) Confirmed(peer uint8) bool {
	if int(peer) >= ECUCount {
		return true // fail-closed for an invalid peer index
	}
	return h.peers[peer].confirmed
}

// AnyConfirmed reports whether any monitored peer's fault is latched.
func (h *HeartbeatMonitor) AnyConfirmed() bool {
	for i := range h.peers {
		if h.peers[i].confirmed {
			return true
		}
	}
	return false
}

// TimedOut reports whether peer's fault LED is currently asserted.
func (h *HeartbeatMonitor) TimedOut(peer uint8) bool {
	if int(peer) >= ECUCount {
		return false
	}
	return h.peers[peer].timedOut
}
