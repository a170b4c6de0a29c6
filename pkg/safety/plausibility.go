package safety

import "github.com/taktflow/zecu-core/pkg/platform"

// torqueLut and currentLut are the 16-point torque-percentage to
// expected-current lookup table, grounded on sc_plausibility.c's
// torque_pct_lut/current_ma_lut.
var (
	torqueLut  = [16]uint32{0, 7, 13, 20, 27, 33, 40, 47, 53, 60, 67, 73, 80, 87, 93, 100}
	currentLut = [16]uint32{0, 1750, 3250, 5000, 6750, 8250, 10000, 11750, 13250, 15000, 16750, 18250, 20000, 21750, 23250, 25000}
)

// expectedCurrentMa linearly interpolates currentLut against torquePct's
// bracketing entries in torqueLut.
func expectedCurrentMa(torquePct uint32) uint32 {
	if torquePct == 0 {
		return 0
	}
	if torquePct >= 100 {
		return 25000
	}
	for i := 1; i < len(torqueLut); i++ {
		if torquePct <= torqueLut[i] {
			pctLow, pctHigh := torqueLut[i-1], torqueLut[i]
			curLow, curHigh := currentLut[i-1], currentLut[i]
			pctRange := pctHigh - pctLow
			if pctRange == 0 {
				return curLow
			}
			frac := torquePct - pctLow
			return curLow + (curHigh-curLow)*frac/pctRange
		}
	}
	return 25000
}

// isImplausible reports whether actualMa deviates from expectedMa by more
// than the applicable threshold: an absolute 2000 mA floor when expected
// current is near zero, else 20% of expected with the same 2000 mA floor.
func isImplausible(expectedMa, actualMa uint32) bool {
	var diff uint32
	if actualMa > expectedMa {
		diff = actualMa - expectedMa
	} else {
		diff = expectedMa - actualMa
	}

	if expectedMa < 100 {
		return diff > PlausAbsThresholdMa
	}

	threshold := expectedMa * PlausRelThresholdPct / 100
	if threshold < PlausAbsThresholdMa {
		threshold = PlausAbsThresholdMa
	}
	return diff > threshold
}

// PlausibilityEngine cross-checks commanded torque against measured motor
// current every tick, and separately watches for the compound
// FZC-brake-fault-plus-elevated-current backup cutoff condition. Once
// faulted it is latched for the remainder of the power cycle.
type PlausibilityEngine struct {
	gpio platform.GPIO

	debounceCounter     uint32
	backupCutoffCounter uint32
	faulted             bool
}

// NewPlausibilityEngine returns an engine driving the system fault LED
// through gpio.
func NewPlausibilityEngine(gpio platform.GPIO) *PlausibilityEngine {
	return &PlausibilityEngine{gpio: gpio}
}

// Init clears both counters and the fault latch.
func (p *PlausibilityEngine) Init() {
	p.debounceCounter = 0
	p.backupCutoffCounter = 0
	p.faulted = false
}

// Check runs one tick's worth of plausibility evaluation. torquePct is the
// commanded torque in [0,100], actualCurrentMa is the measured motor
// current, and fzcBrakeFault is the FZC brake-fault bit from the FZC
// heartbeat payload. If the engine is already faulted, Check is a no-op —
// the latch is sticky.
func (p *PlausibilityEngine) Check(torquePct uint32, actualCurrentMa uint32, fzcBrakeFault bool) {
	if p.faulted {
		return
	}

	expected := expectedCurrentMa(torquePct)
	if isImplausible(expected, actualCurrentMa) {
		p.debounceCounter++
	} else {
		p.debounceCounter = 0
	}
	if p.debounceCounter >= PlausDebounceTicks {
		p.latch()
	}

	if fzcBrakeFault && actualCurrentMa > BackupCutoffCurrentMa {
		p.backupCutoffCounter++
		if p.backupCutoffCounter >= BackupCutoffTicks {
			p.latch()
		}
	} else {
		p.backupCutoffCounter = 0
	}
}

func (p *PlausibilityEngine) latch() {
	p.faulted = true
	p.gpio.Set(GIOPortA, PinLEDSys, 1)
}

// IsFaulted reports whether the plausibility-fault latch is set.
func (p *PlausibilityEngine) IsFaulted() bool {
	return p.faulted
}
