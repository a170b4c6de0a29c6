package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

func allChecksOk() WatchdogChecks {
	return WatchdogChecks{MonitorRan: true, RamOk: true, CanOk: true, EsmOk: true, StackCanary: true}
}

func TestWatchdogTogglesWhenAllChecksOk(t *testing.T) {
	gpio := simulated.NewGPIO()
	w := NewWatchdog(gpio)
	w.Init()
	assert.Equal(t, uint8(0), gpio.Get(GIOPortA, PinWDI))

	w.Feed(allChecksOk())
	assert.Equal(t, uint8(1), gpio.Get(GIOPortA, PinWDI))

	w.Feed(allChecksOk())
	assert.Equal(t, uint8(0), gpio.Get(GIOPortA, PinWDI))
}

func TestWatchdogDoesNotToggleWhenAnyCheckFails(t *testing.T) {
	gpio := simulated.NewGPIO()
	w := NewWatchdog(gpio)
	w.Init()
	w.Feed(allChecksOk())
	before := gpio.Get(GIOPortA, PinWDI)

	checks := allChecksOk()
	checks.CanOk = false
	w.Feed(checks)
	assert.Equal(t, before, gpio.Get(GIOPortA, PinWDI), "a failing check must starve the feed")
}
