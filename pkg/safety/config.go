// Package safety implements the Safety Controller core: heartbeat fusion
// across monitored peer ECUs, torque/current plausibility checking, the
// kill-relay state machine, the self-test sequencer, the ESM lockstep
// stand-in, and the watchdog-feed gate that ties them together. It is
// grounded on firmware/sc/src/sc_*.c — the reference Safety Controller —
// generalized from static file-scope state to module-owned structs per
// spec.md §9's Design Notes.
package safety

// ECU indices for the monitored peers' heartbeat/fault LED tables.
const (
	ECUCvc   uint8 = 0
	ECUFzc   uint8 = 1
	ECURzc   uint8 = 2
	ECUCount int   = 3
)

// Heartbeat timing, in 10 ms ticks.
const (
	HeartbeatTimeoutTicks uint32 = 15 // 150ms
	HeartbeatConfirmTicks uint32 = 5  // +50ms = 200ms total
	HeartbeatAliveMax     uint8  = 15
)

// BusSilenceTicks is the all-heartbeat-silent timeout, in 10 ms ticks.
const BusSilenceTicks uint32 = 20

// Plausibility thresholds.
const (
	PlausRelThresholdPct  uint32 = 20
	PlausAbsThresholdMa   uint32 = 2000
	PlausDebounceTicks    uint32 = 5
	BackupCutoffCurrentMa uint32 = 1000
	BackupCutoffTicks     uint32 = 10
)

// RelayReadbackThreshold is the number of consecutive GPIO readback
// mismatches that trips the kill relay.
const RelayReadbackThreshold uint32 = 2

// Self-test runtime spreading, in 10 ms ticks.
const (
	SelfTestRuntimePeriod uint32 = 6000 // 60s
	SelfTestRuntimeSteps  int    = 4
)

// StackCanaryValue is the known pattern stamped at init and checked by
// CanaryOK.
const StackCanaryValue uint32 = 0xDEADBEEF

// GPIO pin assignments.
const (
	GIOPortA uint8 = 0
	GIOPortB uint8 = 1

	PinRelay  uint8 = 0
	PinLEDCvc uint8 = 1
	PinLEDFzc uint8 = 2
	PinLEDRzc uint8 = 3
	PinLEDSys uint8 = 4
	PinWDI    uint8 = 5
	PinLEDHB  uint8 = 1 // port B
)

// LED blink timing, in 10 ms ticks.
const (
	LEDBlinkOnTicks  uint32 = 25
	LEDBlinkOffTicks uint32 = 25
)
