package safety

import "github.com/taktflow/zecu-core/pkg/platform"

// Relay drives the kill-relay GPIO output through an Init -> Energised ->
// Killed state machine. Once killed it is terminal for the power cycle:
// Energize becomes a silent no-op, matching the firmware's relay_killed
// latch.
type Relay struct {
	gpio platform.GPIO

	killed                bool
	commanded             bool
	readbackMismatchCount uint32
}

// NewRelay returns a Relay driving the relay pin through gpio.
func NewRelay(gpio platform.GPIO) *Relay {
	return &Relay{gpio: gpio}
}

// Init forces the relay to its safe, de-energized boot state.
func (r *Relay) Init() {
	r.killed = false
	r.commanded = false
	r.readbackMismatchCount = 0
	r.gpio.Set(GIOPortA, PinRelay, 0)
}

// Energize drives the relay HIGH, unless it has already been killed — in
// which case the request is silently ignored.
func (r *Relay) Energize() {
	if r.killed {
		return
	}
	r.commanded = true
	r.gpio.Set(GIOPortA, PinRelay, 1)
}

// deEnergize drives the relay LOW and latches the kill state terminal.
func (r *Relay) deEnergize() {
	r.commanded = false
	r.killed = true
	r.gpio.Set(GIOPortA, PinRelay, 0)
}

// Triggers bundles the four caller-computed de-energise conditions
// CheckTriggers evaluates every tick; the fifth, GPIO readback mismatch,
// CheckTriggers computes itself.
type Triggers struct {
	AnyHeartbeatConfirmed bool
	PlausibilityFaulted   bool
	SelfTestUnhealthy     bool
	ESMErrorActive        bool
}

// CheckTriggers evaluates, in order, the five independent de-energise
// conditions: any confirmed heartbeat fault, a latched plausibility
// fault, an unhealthy self-test state, an active ESM lockstep error, and
// a GPIO readback mismatch persisting for RelayReadbackThreshold
// consecutive ticks. The first trigger found kills the relay immediately
// and the rest are skipped for this tick — matching the firmware's
// early-return chain.
func (r *Relay) CheckTriggers(t Triggers) {
	if r.killed {
		return
	}
	if t.AnyHeartbeatConfirmed || t.PlausibilityFaulted || t.SelfTestUnhealthy || t.ESMErrorActive {
		r.deEnergize()
		return
	}

	readback := r.gpio.Get(GIOPortA, PinRelay)
	expected := uint8(0)
	if r.commanded {
		expected = 1
	}
	if readback != expected {
		r.readbackMismatchCount++
	} else {
		r.readbackMismatchCount = 0
	}
	if r.readbackMismatchCount >= RelayReadbackThreshold {
		r.deEnergize()
	}
}

// IsKilled reports whether the relay's kill latch is set.
func (r *Relay) IsKilled() bool {
	return r.killed
}
