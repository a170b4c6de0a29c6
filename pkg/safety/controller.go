package safety

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taktflow/zecu-core/pkg/platform"
)

// TickPeriod is the Safety Controller's cooperative main loop period.
const TickPeriod = 10 * time.Millisecond

// Inputs bundles the per-tick facts the Controller needs from the rest
// of the network that it does not observe directly: which peers sent a
// heartbeat this tick, the commanded torque and measured motor current
// to cross-check, and the FZC brake-fault bit carried in its heartbeat
// payload.
type Inputs struct {
	HeartbeatRx        [ECUCount]bool
	CommandedTorquePct uint32
	ActualCurrentMa    uint32
	FzcBrakeFault      bool
}

// Controller assembles the heartbeat monitor, plausibility engine, kill
// relay, self-test sequencer, ESM stand-in and watchdog gate into the
// Safety Controller's 10ms cooperative loop, grounded on sc_main.c's
// module wiring and step ordering.
type Controller struct {
	logger *slog.Logger

	can platform.CAN

	Heartbeat    *HeartbeatMonitor
	Plausibility *PlausibilityEngine
	Relay        *Relay
	SelfTest     *SelfTest
	ESM          *ESM
	Watchdog     *Watchdog

	busSilenceCounter uint32
	tick              uint32

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController wires a Controller around the given platform adapters.
// hw backs the self-test sequencer's hardware probes.
func NewController(can platform.CAN, gpio platform.GPIO, hw HardwareTests, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger:       logger.With("service", "safety"),
		can:          can,
		Heartbeat:    NewHeartbeatMonitor(gpio),
		Plausibility: NewPlausibilityEngine(gpio),
		Relay:        NewRelay(gpio),
		SelfTest:     NewSelfTest(hw),
		ESM:          NewESM(gpio),
		Watchdog:     NewWatchdog(gpio),
	}
}

// Init resets every owned module to its power-on state.
func (c *Controller) Init() {
	c.Heartbeat.Init()
	c.Plausibility.Init()
	c.Relay.Init()
	c.SelfTest.Init()
	c.ESM.Init()
	c.Watchdog.Init()
	c.busSilenceCounter = 0
	c.tick = 0
}

// Startup runs the seven-step power-on BIST. A non-zero return is the
// 1-based failed step number; Energize is the caller's responsibility
// and should only run if this returns 0.
func (c *Controller) Startup() uint8 {
	result := c.SelfTest.Startup()
	if result != 0 {
		c.logger.Error("startup self-test failed", "step", result)
	}
	return result
}

// Process runs one 10ms tick: heartbeat evaluation and bus silence
// tracking from this tick's Inputs, plausibility evaluation, relay
// trigger evaluation, runtime self-test, and the conditional watchdog feed —
// matching sc_main.c's main-loop step ordering.
func (c *Controller) Process(in Inputs) {
	c.tick++

	anyRx := false
	for peer, rx := range in.HeartbeatRx {
		if rx {
			c.Heartbeat.NotifyRx(uint8(peer))
			anyRx = true
		}
	}
	c.Heartbeat.Tick()

	if anyRx {
		c.busSilenceCounter = 0
	} else {
		c.busSilenceCounter++
	}

	c.Plausibility.Check(in.CommandedTorquePct, in.ActualCurrentMa, in.FzcBrakeFault)

	c.Relay.CheckTriggers(Triggers{
		AnyHeartbeatConfirmed: c.Heartbeat.AnyConfirmed(),
		PlausibilityFaulted:   c.Plausibility.IsFaulted(),
		SelfTestUnhealthy:     !c.SelfTest.IsHealthy(),
		ESMErrorActive:        c.ESM.IsErrorActive(),
	})

	c.SelfTest.Runtime()

	c.Watchdog.Feed(WatchdogChecks{
		MonitorRan:  true,
		RamOk:       c.SelfTest.IsHealthy(),
		CanOk:       !c.can.IsBusOff() && !c.IsBusSilent(),
		EsmOk:       !c.ESM.IsErrorActive(),
		StackCanary: c.SelfTest.CanaryOk(),
	})
}

// BlinkFailureCode reports the system LED level for tick-driven
// startup-failure blinking: failStep repeated on/off pulses of
// LEDBlinkOnTicks/LEDBlinkOffTicks each, followed by a pause before
// repeating. Unlike sc_main.c's sc_startup_fail_blink, which busy-waits
// in an infinite loop after a failed BIST, this is driven by the
// caller's own tick counter so it can still cooperate with a
// surrounding event loop instead of blocking it.
func (c *Controller) BlinkFailureCode(failStep uint8, ticksSinceFailure uint32) bool {
	if failStep == 0 {
		return false
	}
	cycleLen := LEDBlinkOnTicks + LEDBlinkOffTicks
	groupLen := uint32(failStep) * cycleLen
	pauseLen := cycleLen * 2
	pos := ticksSinceFailure % (groupLen + pauseLen)
	if pos >= groupLen {
		return false
	}
	return pos%cycleLen < LEDBlinkOnTicks
}

// IsBusSilent reports whether every monitored peer has gone
// BusSilenceTicks ticks without a single heartbeat reception.
func (c *Controller) IsBusSilent() bool {
	return c.busSilenceCounter >= BusSilenceTicks
}

// FaultLED reports the current GPIO level the given peer's fault LED
// is being driven at — HIGH once that peer's heartbeat has timed out.
func (c *Controller) FaultLED(peer uint8) bool {
	return c.Heartbeat.TimedOut(peer)
}

// CurrentTick returns the number of ticks processed since Init.
func (c *Controller) CurrentTick() uint32 {
	return c.tick
}

// Start runs Process on a TickPeriod ticker until ctx is cancelled or
// Stop is called. Supplying Inputs each tick is the caller's
// responsibility via the nextInputs callback, mirroring how the
// reference target gathers fresh heartbeat/plausibility facts from CAN
// reception immediately before each loop iteration.
func (c *Controller) Start(ctx context.Context, nextInputs func() Inputs) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(TickPeriod)
		defer ticker.Stop()
		c.logger.Info("starting safety controller loop")
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("stopped safety controller loop")
				return
			case <-ticker.C:
				c.Process(nextInputs())
			}
		}
	}()
}

// Stop cancels the running loop. Wait should be called afterwards to
// block until it has fully exited.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Wait blocks until the loop started by Start has exited.
func (c *Controller) Wait() {
	c.wg.Wait()
}
