package dtc

import "github.com/taktflow/zecu-core/pkg/platform"

// Policy selects how Store behaves once every slot holds a record.
type Policy int

const (
	// PolicySlotBased refuses StoreDtc once no EMPTY slot remains,
	// matching the FZC variant.
	PolicySlotBased Policy = iota
	// PolicyCircular overwrites the oldest slot once the table is full,
	// matching the CVC variant (Swc_Nvm.c's write-index/count pair).
	PolicyCircular
)

// nvmBlockBase is the first platform.NVM block id a Store's slots occupy;
// slot i lives at block nvmBlockBase+i.
const nvmBlockBase uint16 = 0x1000

// Store is the RAM mirror plus NVM persistence for a fixed-size DTC
// table.
type Store struct {
	nvm    platform.NVM
	policy Policy

	slots      [MaxSlots]Record
	occupied   [MaxSlots]bool
	writeIndex int
	count      int
}

// NewStore returns a Store backed by nvm, using the given policy for
// full-table behaviour.
func NewStore(nvm platform.NVM, policy Policy) *Store {
	return &Store{nvm: nvm, policy: policy}
}

// Init zeroes the RAM mirror, then loads every slot from NVM, treating any
// slot whose CRC fails as EMPTY.
func (s *Store) Init() {
	s.slots = [MaxSlots]Record{}
	s.occupied = [MaxSlots]bool{}
	s.writeIndex = 0
	s.count = 0

	for i := 0; i < MaxSlots; i++ {
		var raw [recordSize]byte
		if s.nvm.ReadBlock(nvmBlockBase+uint16(i), raw[:]) != nil {
			continue
		}
		record, ok := decodeRecord(raw)
		if !ok || record.Status == statusEmpty {
			continue
		}
		s.slots[i] = record
		s.occupied[i] = true
		s.count++
	}
}

// StoreDtc records a new or updated DTC. In PolicySlotBased, it fills the
// first EMPTY slot and fails with ErrStoreFull if none remain. In
// PolicyCircular, it always writes to the current write index and
// advances it modulo MaxSlots, overwriting the oldest entry once full.
func (s *Store) StoreDtc(code uint32, status uint8, frame FreezeFrame) error {
	slot := -1
	switch s.policy {
	case PolicySlotBased:
		for i := 0; i < MaxSlots; i++ {
			if !s.occupied[i] {
				slot = i
				break
			}
		}
		if slot == -1 {
			return ErrStoreFull
		}
	case PolicyCircular:
		slot = s.writeIndex
		s.writeIndex = (s.writeIndex + 1) % MaxSlots
	default:
		return ErrIllegalPolicy
	}

	occurrence := uint32(1)
	if s.occupied[slot] && s.slots[slot].Code == code {
		occurrence = s.slots[slot].OccurrenceCount + 1
	}

	record := Record{Code: code, Status: status, OccurrenceCount: occurrence, FreezeFrame: frame}
	if !s.occupied[slot] {
		s.count++
	}
	s.slots[slot] = record
	s.occupied[slot] = true

	raw := record.encode()
	return s.nvm.WriteBlock(nvmBlockBase+uint16(slot), raw[:])
}

// LoadDtc returns the record at index iff the slot is occupied, re-reading
// and re-verifying its NVM block rather than trusting the RAM mirror, so
// that corruption occurring after Init is still caught.
func (s *Store) LoadDtc(index int) (Record, error) {
	if index < 0 || index >= MaxSlots {
		return Record{}, ErrOutOfRange
	}
	if !s.occupied[index] {
		return Record{}, ErrSlotEmpty
	}
	var raw [recordSize]byte
	if err := s.nvm.ReadBlock(nvmBlockBase+uint16(index), raw[:]); err != nil {
		return Record{}, err
	}
	record, ok := decodeRecord(raw)
	if !ok {
		return Record{}, ErrCRC
	}
	return record, nil
}

// ClearAll empties every slot, both in RAM and in NVM, for an authorised
// clear-diagnostic-information request.
func (s *Store) ClearAll() error {
	for i := 0; i < MaxSlots; i++ {
		if !s.occupied[i] {
			continue
		}
		s.occupied[i] = false
		s.slots[i] = Record{}
		var empty [recordSize]byte
		if err := s.nvm.WriteBlock(nvmBlockBase+uint16(i), empty[:]); err != nil {
			return err
		}
	}
	s.count = 0
	s.writeIndex = 0
	return nil
}

// Count reports how many slots currently hold a record.
func (s *Store) Count() int {
	return s.count
}
