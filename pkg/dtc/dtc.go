// Package dtc implements the diagnostic trouble-code store and the
// calibration block, both backed by platform.NVM and protected with
// CRC-16/CCITT. It supports two storage policies — slot-based
// (refuse-when-full) and circular (overwrite-when-full) — selected at
// construction, resolving the "is it circular or slot-based" ambiguity
// the reference firmware leaves implicit by choosing one explicit policy
// per ECU variant instead of one hard-coded behaviour.
package dtc

import (
	"encoding/binary"

	"github.com/taktflow/zecu-core/internal/crc"
)

// FreezeFrameSize is the fixed byte length of a DTC's captured plant
// state: vehicle speed, motor current, motor temperature, battery
// voltage (2 bytes each).
const FreezeFrameSize = 8

// MaxSlots bounds the number of DTC records a Store holds.
const MaxSlots = 20

// Status bits, ISO-14229 semantics.
const (
	StatusTestFailed       uint8 = 1 << 0
	StatusTestFailedThisOp uint8 = 1 << 1
	StatusPending          uint8 = 1 << 2
	StatusConfirmed        uint8 = 1 << 3
)

// statusEmpty is the status value reserved to mean "slot holds no
// record".
const statusEmpty uint8 = 0

// FreezeFrame captures plant state at the moment a fault is first
// observed.
type FreezeFrame struct {
	VehicleSpeedKph  uint16
	MotorCurrentMa   uint16
	MotorTempC       uint16
	BatteryVoltageMv uint16
}

func (f FreezeFrame) bytes() [FreezeFrameSize]byte {
	var b [FreezeFrameSize]byte
	binary.BigEndian.PutUint16(b[0:2], f.VehicleSpeedKph)
	binary.BigEndian.PutUint16(b[2:4], f.MotorCurrentMa)
	binary.BigEndian.PutUint16(b[4:6], f.MotorTempC)
	binary.BigEndian.PutUint16(b[6:8], f.BatteryVoltageMv)
	return b
}

func freezeFrameFromBytes(b [FreezeFrameSize]byte) FreezeFrame {
	return FreezeFrame{
		VehicleSpeedKph:  binary.BigEndian.Uint16(b[0:2]),
		MotorCurrentMa:   binary.BigEndian.Uint16(b[2:4]),
		MotorTempC:       binary.BigEndian.Uint16(b[4:6]),
		BatteryVoltageMv: binary.BigEndian.Uint16(b[6:8]),
	}
}

// Record is one DTC entry: a 24-bit code, an ISO-14229 status byte, an
// occurrence counter and a freeze frame.
type Record struct {
	Code            uint32 // low 24 bits significant
	Status          uint8
	OccurrenceCount uint32
	FreezeFrame     FreezeFrame
}

// recordSize is the on-disk byte layout: code(3) + status(1) + count(4) +
// freeze frame(8) + crc(2).
const recordSize = 3 + 1 + 4 + FreezeFrameSize + 2

func (r Record) encode() [recordSize]byte {
	var b [recordSize]byte
	b[0] = byte(r.Code >> 16)
	b[1] = byte(r.Code >> 8)
	b[2] = byte(r.Code)
	b[3] = r.Status
	binary.BigEndian.PutUint32(b[4:8], r.OccurrenceCount)
	frame := r.FreezeFrame.bytes()
	copy(b[8:8+FreezeFrameSize], frame[:])
	crcVal := crc.Value16(b[:recordSize-2])
	binary.BigEndian.PutUint16(b[recordSize-2:], crcVal)
	return b
}

func decodeRecord(b [recordSize]byte) (Record, bool) {
	computed := crc.Value16(b[:recordSize-2])
	stored := binary.BigEndian.Uint16(b[recordSize-2:])
	if computed != stored {
		return Record{}, false
	}
	var frame [FreezeFrameSize]byte
	copy(frame[:], b[8:8+FreezeFrameSize])
	r := Record{
		Code:            uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]),
		Status:          b[3],
		OccurrenceCount: binary.BigEndian.Uint32(b[4:8]),
		FreezeFrame:     freezeFrameFromBytes(frame),
	}
	return r, true
}
