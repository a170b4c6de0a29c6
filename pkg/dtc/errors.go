package dtc

import "errors"

var (
	ErrStoreFull      = errors.New("dtc: no empty slot remains (slot-based policy)")
	ErrIllegalPolicy  = errors.New("dtc: unknown store policy")
	ErrOutOfRange     = errors.New("dtc: slot index out of range")
	ErrSlotEmpty      = errors.New("dtc: slot holds no record")
	ErrCRC            = errors.New("dtc: CRC does not match")
	ErrCalBlockBadLen = errors.New("dtc: calibration buffer has the wrong length")
)
