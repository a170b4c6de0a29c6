package safety

import "github.com/taktflow/zecu-core/pkg/platform"

// ESM stands in for the lockstep-compare Error Signaling Module
// interrupt on the reference target. The real ISR de-energizes the
// relay and halts in under 100 clock cycles from hardware context; Go
// has no ISR equivalent, so RaiseLockstepError is a plain synchronous
// method the scheduler or platform layer calls the moment a lockstep
// mismatch is observed. It does not loop forever the way the firmware
// ISR does — the watchdog gate achieves the same effect by simply
// never feeding again while the error is latched.
type ESM struct {
	gpio platform.GPIO

	errorActive bool
}

// NewESM returns an ESM driving the relay and system LED through gpio.
func NewESM(gpio platform.GPIO) *ESM {
	return &ESM{gpio: gpio}
}

// Init clears the latched error flag.
func (e *ESM) Init() {
	e.errorActive = false
}

// RaiseLockstepError de-energizes the relay pin directly, asserts the
// system fault LED, and latches the error flag. The latch is terminal
// for the power cycle.
func (e *ESM) RaiseLockstepError() {
	e.gpio.Set(GIOPortA, PinRelay, 0)
	e.gpio.Set(GIOPortA, PinLEDSys, 1)
	e.errorActive = true
}

// IsErrorActive reports whether a lockstep error has been latched.
func (e *ESM) IsErrorActive() bool {
	return e.errorActive
}
