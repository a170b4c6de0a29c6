package dtc

import (
	"encoding/binary"

	"github.com/taktflow/zecu-core/internal/crc"
	"github.com/taktflow/zecu-core/pkg/platform"
)

// TorqueLutSize is the fixed length of the calibration block's torque
// lookup table.
const TorqueLutSize = 16

// nvmCalBlock is the platform.NVM block id the calibration mirror
// persists to.
const nvmCalBlock uint16 = 0x2000

// Calibration is the fixed set of tunable thresholds every ECU loads at
// init: plausibility thresholds, debounce counts, and the torque→current
// lookup table, matching Swc_Nvm_CalDataType's field set.
type Calibration struct {
	PlausAbsThresholdMa uint16
	PlausDebounceTicks  uint8
	StuckThreshold      uint16
	StuckCycles         uint16
	TorqueLut           [TorqueLutSize]uint16
}

// DefaultCalibration is the compiled-in fallback applied whenever NVM
// fails CRC at load, grounded on Swc_Nvm.c's Nvm_DefaultCal constant.
var DefaultCalibration = Calibration{
	PlausAbsThresholdMa: 819,
	PlausDebounceTicks:  2,
	StuckThreshold:      10,
	StuckCycles:         100,
	TorqueLut: [TorqueLutSize]uint16{
		0, 0, 33, 100, 200, 300, 400, 467,
		533, 600, 667, 733, 800, 867, 933, 1000,
	},
}

const calSize = 2 + 1 + 2 + 2 + TorqueLutSize*2 + 2

func (c Calibration) encode() []byte {
	b := make([]byte, calSize)
	binary.BigEndian.PutUint16(b[0:2], c.PlausAbsThresholdMa)
	b[2] = c.PlausDebounceTicks
	binary.BigEndian.PutUint16(b[3:5], c.StuckThreshold)
	binary.BigEndian.PutUint16(b[5:7], c.StuckCycles)
	for i, v := range c.TorqueLut {
		off := 7 + i*2
		binary.BigEndian.PutUint16(b[off:off+2], v)
	}
	crcVal := crc.Value16(b[:calSize-2])
	binary.BigEndian.PutUint16(b[calSize-2:], crcVal)
	return b
}

func decodeCalibration(b []byte) (Calibration, bool) {
	if len(b) != calSize {
		return Calibration{}, false
	}
	computed := crc.Value16(b[:calSize-2])
	stored := binary.BigEndian.Uint16(b[calSize-2:])
	if computed != stored {
		return Calibration{}, false
	}
	var c Calibration
	c.PlausAbsThresholdMa = binary.BigEndian.Uint16(b[0:2])
	c.PlausDebounceTicks = b[2]
	c.StuckThreshold = binary.BigEndian.Uint16(b[3:5])
	c.StuckCycles = binary.BigEndian.Uint16(b[5:7])
	for i := range c.TorqueLut {
		off := 7 + i*2
		c.TorqueLut[i] = binary.BigEndian.Uint16(b[off : off+2])
	}
	return c, true
}

// CalStore is the RAM mirror plus NVM persistence for the calibration
// block.
type CalStore struct {
	nvm       platform.NVM
	mirror    Calibration
	defaults  Calibration
	defaulted bool
}

// NewCalStore returns a CalStore backed by nvm, falling back to defaults
// on CRC mismatch.
func NewCalStore(nvm platform.NVM, defaults Calibration) *CalStore {
	return &CalStore{nvm: nvm, defaults: defaults}
}

// Init loads the calibration block from NVM; on CRC mismatch (including a
// never-written block) it overwrites both the RAM mirror and NVM with the
// factory defaults, re-CRC'd.
func (c *CalStore) Init() error {
	raw := make([]byte, calSize)
	if err := c.nvm.ReadBlock(nvmCalBlock, raw); err == nil {
		if cal, ok := decodeCalibration(raw); ok {
			c.mirror = cal
			c.defaulted = false
			return nil
		}
	}
	c.mirror = c.defaults
	c.defaulted = true
	return c.nvm.WriteBlock(nvmCalBlock, c.mirror.encode())
}

// ReadCal returns a copy of the RAM mirror and whether Init had to fall
// back to factory defaults because NVM was missing or failed CRC — latched
// at Init, not re-derived by comparing against defaults, so a legitimate
// write that happens to reproduce the default values is not misreported.
func (c *CalStore) ReadCal() (Calibration, bool) {
	return c.mirror, c.defaulted
}

// WriteCal replaces the RAM mirror with in, recomputes its CRC, persists
// it, and clears the defaulted latch: the caller has now supplied a real
// calibration, even one equal to the factory defaults.
func (c *CalStore) WriteCal(in Calibration) error {
	c.mirror = in
	c.defaulted = false
	return c.nvm.WriteBlock(nvmCalBlock, c.mirror.encode())
}
