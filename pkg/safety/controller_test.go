package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taktflow/zecu-core/pkg/platform/faultinject"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

func newTestController(t *testing.T) (*Controller, *simulated.GPIO, *simulated.Network) {
	t.Helper()
	net := simulated.Network{}
	bus := net.Attach()
	gpio := simulated.NewGPIO()
	hw := simulated.NewHardwareTests()
	c := NewController(bus, gpio, hw, nil)
	c.Init()
	require.Equal(t, uint8(0), c.Startup())
	return c, gpio, &net
}

func allPeersHealthy() Inputs {
	return Inputs{
		HeartbeatRx:        [ECUCount]bool{true, true, true},
		CommandedTorquePct: 0,
		ActualCurrentMa:    0,
	}
}

func TestControllerFeedsWatchdogWhenEverythingHealthy(t *testing.T) {
	c, gpio, _ := newTestController(t)
	c.Process(allPeersHealthy())
	assert.Equal(t, uint8(1), gpio.Get(GIOPortA, PinWDI))
}

func TestControllerKillsRelayOnHeartbeatConfirmButKeepsFeedingWatchdog(t *testing.T) {
	c, gpio, _ := newTestController(t)

	for i := 0; i < 20; i++ {
		c.Process(Inputs{HeartbeatRx: [ECUCount]bool{false, true, true}})
	}
	assert.True(t, c.Relay.IsKilled())

	// The watchdog's five conditions never reference the relay: a
	// confirmed heartbeat fault cuts the motor but must not itself stop
	// the controller from feeding its own watchdog.
	before := gpio.Get(GIOPortA, PinWDI)
	c.Process(allPeersHealthy())
	assert.NotEqual(t, before, gpio.Get(GIOPortA, PinWDI))
}

func TestControllerBusSilenceTracksConsecutiveSilentTicks(t *testing.T) {
	c, _, _ := newTestController(t)
	for i := uint32(0); i < BusSilenceTicks-1; i++ {
		c.Process(Inputs{})
		assert.False(t, c.IsBusSilent())
	}
	c.Process(Inputs{})
	assert.True(t, c.IsBusSilent())
}

func TestControllerBusSilenceResetsOnAnyHeartbeat(t *testing.T) {
	c, _, _ := newTestController(t)
	for i := uint32(0); i < BusSilenceTicks-1; i++ {
		c.Process(Inputs{})
	}
	c.Process(allPeersHealthy())
	assert.False(t, c.IsBusSilent())
}

func TestControllerBusSilenceStopsWatchdogFeed(t *testing.T) {
	c, gpio, _ := newTestController(t)
	for i := uint32(0); i < BusSilenceTicks-1; i++ {
		c.Process(Inputs{})
	}
	before := gpio.Get(GIOPortA, PinWDI)

	// This tick crosses the silence threshold: the watchdog gate must
	// react to bus silence the same way it reacts to bus-off, per the
	// DCAN1 bus-silence counter supplementing the bus-off check.
	c.Process(Inputs{})
	require.True(t, c.IsBusSilent())
	assert.Equal(t, before, gpio.Get(GIOPortA, PinWDI), "a silent bus must stop the watchdog feed")
}

func TestControllerForcedBusOffStopsWatchdogFeed(t *testing.T) {
	net := simulated.Network{}
	bus := faultinject.Wrap(net.Attach())
	gpio := simulated.NewGPIO()
	hw := simulated.NewHardwareTests()
	c := NewController(bus, gpio, hw, nil)
	c.Init()
	require.Equal(t, uint8(0), c.Startup())

	c.Process(allPeersHealthy())
	before := gpio.Get(GIOPortA, PinWDI)

	bus.ForceBusOff(true)
	c.Process(allPeersHealthy())
	assert.Equal(t, before, gpio.Get(GIOPortA, PinWDI), "a bus-off controller must stop the watchdog feed")

	bus.ForceBusOff(false)
	c.Process(allPeersHealthy())
	assert.NotEqual(t, before, gpio.Get(GIOPortA, PinWDI), "feed resumes once the bus recovers")
}

func TestControllerPlausibilityFaultKillsRelay(t *testing.T) {
	c, _, _ := newTestController(t)
	for i := 0; i < int(PlausDebounceTicks); i++ {
		in := allPeersHealthy()
		in.ActualCurrentMa = 5000 // grossly implausible against 0 commanded torque
		c.Process(in)
	}
	assert.True(t, c.Relay.IsKilled())
}

func TestControllerFaultLEDReflectsTimedOutPeer(t *testing.T) {
	c, _, _ := newTestController(t)
	assert.False(t, c.FaultLED(ECUFzc))
	for i := 0; i < 15; i++ {
		c.Process(Inputs{HeartbeatRx: [ECUCount]bool{true, false, true}})
	}
	assert.True(t, c.FaultLED(ECUFzc))
}

func TestControllerStartupFailureSkipsEnergize(t *testing.T) {
	net := simulated.Network{}
	bus := net.Attach()
	gpio := simulated.NewGPIO()
	hw := &flakyHardwareTests{failStep: 4}
	c := NewController(bus, gpio, hw, nil)
	c.Init()
	assert.Equal(t, uint8(4), c.Startup())
}

func TestBlinkFailureCodePulsesFailStepTimes(t *testing.T) {
	c, _, _ := newTestController(t)
	onTicks := 0
	period := 3*(LEDBlinkOnTicks+LEDBlinkOffTicks) + 2*(LEDBlinkOnTicks+LEDBlinkOffTicks)
	for tick := uint32(0); tick < period; tick++ {
		if c.BlinkFailureCode(3, tick) {
			onTicks++
		}
	}
	assert.Equal(t, int(3*LEDBlinkOnTicks), onTicks)
}

type flakyHardwareTests struct {
	failStep int
}

func (f *flakyHardwareTests) LockstepBist() bool        { return f.failStep != 1 }
func (f *flakyHardwareTests) RamPbist() bool            { return f.failStep != 2 }
func (f *flakyHardwareTests) FlashCrcCheck() bool       { return f.failStep != 3 }
func (f *flakyHardwareTests) DcanLoopbackTest() bool    { return f.failStep != 4 }
func (f *flakyHardwareTests) GpioReadbackTest() bool    { return f.failStep != 5 }
func (f *flakyHardwareTests) LampTest() bool            { return f.failStep != 6 }
func (f *flakyHardwareTests) WatchdogTest() bool        { return f.failStep != 7 }
func (f *flakyHardwareTests) FlashCrcIncremental() bool { return true }
func (f *flakyHardwareTests) DcanErrorCheck() bool      { return true }
