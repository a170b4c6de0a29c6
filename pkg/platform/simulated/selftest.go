package simulated

// HardwareTests is an always-pass stand-in for safety.HardwareTests,
// letting simulated ECUs run the self-test sequencer without real
// BIST/PBIST/CRC hardware behind it. Wrap it in faultinject.HardwareProbes
// (faultinject.WrapHardwareTests) to force individual probes to fail.
type HardwareTests struct{}

// NewHardwareTests returns a probe set that always reports healthy.
func NewHardwareTests() *HardwareTests {
	return &HardwareTests{}
}

func (HardwareTests) LockstepBist() bool        { return true }
func (HardwareTests) RamPbist() bool            { return true }
func (HardwareTests) FlashCrcCheck() bool       { return true }
func (HardwareTests) DcanLoopbackTest() bool    { return true }
func (HardwareTests) GpioReadbackTest() bool    { return true }
func (HardwareTests) LampTest() bool            { return true }
func (HardwareTests) WatchdogTest() bool        { return true }
func (HardwareTests) FlashCrcIncremental() bool { return true }
func (HardwareTests) DcanErrorCheck() bool      { return true }
