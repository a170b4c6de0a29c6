package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

func TestRaiseLockstepErrorDeEnergizesAndLatches(t *testing.T) {
	gpio := simulated.NewGPIO()
	e := NewESM(gpio)
	e.Init()
	gpio.Set(GIOPortA, PinRelay, 1)

	e.RaiseLockstepError()
	assert.Equal(t, uint8(0), gpio.Get(GIOPortA, PinRelay))
	assert.Equal(t, uint8(1), gpio.Get(GIOPortA, PinLEDSys))
	assert.True(t, e.IsErrorActive())
}

func TestESMErrorClearsOnlyOnInit(t *testing.T) {
	gpio := simulated.NewGPIO()
	e := NewESM(gpio)
	e.Init()
	e.RaiseLockstepError()
	assert.True(t, e.IsErrorActive())

	e.Init()
	assert.False(t, e.IsErrorActive())
}
