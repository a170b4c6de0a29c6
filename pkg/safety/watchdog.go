package safety

import "github.com/taktflow/zecu-core/pkg/platform"

// WatchdogChecks bundles the five conditions Feed requires to hold
// simultaneously before it will toggle the external watchdog's WDI
// pin, grounded on sc_cfg.h's SC_WDG_COND_* bitmask.
type WatchdogChecks struct {
	MonitorRan  bool // the tick's monitoring functions all ran
	RamOk       bool // runtime self-test's RAM pattern check, if it ran this tick, passed
	CanOk       bool // CAN controller is neither bus-off nor bus-silent
	EsmOk       bool // no latched ESM lockstep error
	StackCanary bool // stack canary still intact
}

// allOk reports whether every watchdog condition holds.
func (c WatchdogChecks) allOk() bool {
	return c.MonitorRan && c.RamOk && c.CanOk && c.EsmOk && c.StackCanary
}

// Watchdog models the external TPS3823-style watchdog's WDI feed
// line: Feed toggles the pin only when every condition in Checks
// holds, and does nothing otherwise, letting the real watchdog starve
// and reset the MCU on timeout.
type Watchdog struct {
	gpio  platform.GPIO
	state uint8
}

// NewWatchdog returns a feed gate driving the WDI pin through gpio.
func NewWatchdog(gpio platform.GPIO) *Watchdog {
	return &Watchdog{gpio: gpio}
}

// Init resets the toggle state and drives WDI low.
func (w *Watchdog) Init() {
	w.state = 0
	w.gpio.Set(GIOPortA, PinWDI, 0)
}

// Feed toggles the WDI pin if every check holds, or leaves it
// untouched otherwise.
func (w *Watchdog) Feed(checks WatchdogChecks) {
	if !checks.allOk() {
		return
	}
	w.state ^= 1
	w.gpio.Set(GIOPortA, PinWDI, w.state)
}
