package faultinject

import "sync"

// hardwareTests is the subset of safety.HardwareTests a HardwareProbes
// wraps. Declared locally to avoid an import of pkg/safety from the
// platform layer — Go's structural typing satisfies it all the same.
type hardwareTests interface {
	LockstepBist() bool
	RamPbist() bool
	FlashCrcCheck() bool
	DcanLoopbackTest() bool
	GpioReadbackTest() bool
	LampTest() bool
	WatchdogTest() bool
	FlashCrcIncremental() bool
	DcanErrorCheck() bool
}

// HardwareProbes wraps an underlying hardware probe set and lets a test
// force individual named probes to fail.
type HardwareProbes struct {
	underlying hardwareTests

	mu     sync.Mutex
	forced map[string]bool
}

// WrapHardwareTests returns a HardwareProbes delegating to underlying
// until a probe is forced.
func WrapHardwareTests(underlying hardwareTests) *HardwareProbes {
	return &HardwareProbes{underlying: underlying, forced: make(map[string]bool)}
}

// Force overrides the named probe's result. Valid names match the
// hardwareTests method names, e.g. "RamPbist".
func (p *HardwareProbes) Force(name string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forced[name] = ok
}

func (p *HardwareProbes) result(name string, fallback func() bool) bool {
	p.mu.Lock()
	v, ok := p.forced[name]
	p.mu.Unlock()
	if ok {
		return v
	}
	return fallback()
}

func (p *HardwareProbes) LockstepBist() bool {
	return p.result("LockstepBist", p.underlying.LockstepBist)
}
func (p *HardwareProbes) RamPbist() bool {
	return p.result("RamPbist", p.underlying.RamPbist)
}
func (p *HardwareProbes) FlashCrcCheck() bool {
	return p.result("FlashCrcCheck", p.underlying.FlashCrcCheck)
}
func (p *HardwareProbes) DcanLoopbackTest() bool {
	return p.result("DcanLoopbackTest", p.underlying.DcanLoopbackTest)
}
func (p *HardwareProbes) GpioReadbackTest() bool {
	return p.result("GpioReadbackTest", p.underlying.GpioReadbackTest)
}
func (p *HardwareProbes) LampTest() bool {
	return p.result("LampTest", p.underlying.LampTest)
}
func (p *HardwareProbes) WatchdogTest() bool {
	return p.result("WatchdogTest", p.underlying.WatchdogTest)
}
func (p *HardwareProbes) FlashCrcIncremental() bool {
	return p.result("FlashCrcIncremental", p.underlying.FlashCrcIncremental)
}
func (p *HardwareProbes) DcanErrorCheck() bool {
	return p.result("DcanErrorCheck", p.underlying.DcanErrorCheck)
}
