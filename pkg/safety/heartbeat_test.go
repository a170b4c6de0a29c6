package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

func TestHeartbeatConfirmsAtTick20ForTimeoutAt15(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()

	for i := 0; i < 19; i++ {
		h.Tick()
	}
	assert.True(t, h.TimedOut(ECUCvc))
	assert.False(t, h.Confirmed(ECUCvc), "confirmation must not land before tick 20")

	h.Tick() // tick 20
	assert.True(t, h.Confirmed(ECUCvc))
}

func TestHeartbeatTimedOutAssertsAtTick15NotBefore(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()

	for i := 0; i < 14; i++ {
		h.Tick()
	}
	assert.False(t, h.TimedOut(ECUCvc))

	h.Tick() // tick 15
	assert.True(t, h.TimedOut(ECUCvc))
	assert.Equal(t, uint8(1), gpio.Get(GIOPortA, PinLEDCvc))
}

func TestNotifyRxResetsBeforeConfirmation(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()

	for i := 0; i < 17; i++ {
		h.Tick()
	}
	assert.True(t, h.TimedOut(ECUCvc))
	assert.False(t, h.Confirmed(ECUCvc))

	h.NotifyRx(ECUCvc)
	assert.False(t, h.TimedOut(ECUCvc))
	assert.Equal(t, uint8(0), gpio.Get(GIOPortA, PinLEDCvc))

	for i := 0; i < 5; i++ {
		h.Tick()
	}
	assert.False(t, h.Confirmed(ECUCvc), "a reset before confirmation must prevent it entirely")
}

func TestNotifyRxIsNoOpOnceConfirmed(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()

	for i := 0; i < 20; i++ {
		h.Tick()
	}
	require.True(t, h.Confirmed(ECUCvc))

	h.NotifyRx(ECUCvc)
	assert.True(t, h.Confirmed(ECUCvc), "confirmation is terminal")
}

func TestAnyConfirmedReflectsAnyPeer(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()
	assert.False(t, h.AnyConfirmed())

	for i := 0; i < 20; i++ {
		h.Tick()
	}
	assert.True(t, h.AnyConfirmed())
}

func TestTimedOutFalseForInvalidPeerIndex(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()
	assert.False(t, h.TimedOut(99))
}

func TestConfirmedFailClosedForInvalidPeerIndex(t *testing.T) {
	gpio := simulated.NewGPIO()
	h := NewHeartbeatMonitor(gpio)
	h.Init()
	assert.True(t, h.Confirmed(99))
}
