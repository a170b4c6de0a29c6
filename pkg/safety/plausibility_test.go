package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

func TestExpectedCurrentInterpolatesLinearly(t *testing.T) {
	assert.Equal(t, uint32(0), expectedCurrentMa(0))
	assert.Equal(t, uint32(25000), expectedCurrentMa(100))
	// torquePct=13 falls exactly on a LUT point (index 2).
	assert.Equal(t, uint32(3250), expectedCurrentMa(13))
}

func TestPlausibilityLatchesAfterDebounceTicks(t *testing.T) {
	gpio := simulated.NewGPIO()
	p := NewPlausibilityEngine(gpio)
	p.Init()

	// torque 0 expects ~0mA; 5000mA actual is grossly implausible.
	for i := 0; i < int(PlausDebounceTicks)-1; i++ {
		p.Check(0, 5000, false)
		assert.False(t, p.IsFaulted())
	}
	p.Check(0, 5000, false)
	assert.True(t, p.IsFaulted())
	assert.Equal(t, uint8(1), gpio.Get(GIOPortA, PinLEDSys))
}

func TestPlausibilityDebounceResetsOnGoodTick(t *testing.T) {
	gpio := simulated.NewGPIO()
	p := NewPlausibilityEngine(gpio)
	p.Init()

	for i := 0; i < int(PlausDebounceTicks)-1; i++ {
		p.Check(0, 5000, false)
	}
	p.Check(0, 0, false) // plausible tick resets the debounce counter
	for i := 0; i < int(PlausDebounceTicks)-1; i++ {
		p.Check(0, 5000, false)
		assert.False(t, p.IsFaulted())
	}
}

func TestBackupCutoffLatchesAtTenTicks(t *testing.T) {
	gpio := simulated.NewGPIO()
	p := NewPlausibilityEngine(gpio)
	p.Init()

	for i := 0; i < int(BackupCutoffTicks)-1; i++ {
		p.Check(7, 2000, true) // torque/current plausible, brake fault active
		assert.False(t, p.IsFaulted())
	}
	p.Check(7, 2000, true)
	assert.True(t, p.IsFaulted())
}

func TestBackupCutoffRequiresBothBrakeFaultAndCurrent(t *testing.T) {
	gpio := simulated.NewGPIO()
	p := NewPlausibilityEngine(gpio)
	p.Init()

	for i := 0; i < 50; i++ {
		p.Check(7, 2000, false) // current high but no brake fault
	}
	assert.False(t, p.IsFaulted())
}

func TestPlausibilityFaultIsSticky(t *testing.T) {
	gpio := simulated.NewGPIO()
	p := NewPlausibilityEngine(gpio)
	p.Init()

	for i := 0; i < int(PlausDebounceTicks); i++ {
		p.Check(0, 5000, false)
	}
	assert.True(t, p.IsFaulted())

	p.Check(0, 0, false) // now perfectly plausible
	assert.True(t, p.IsFaulted(), "latch must not clear")
}
