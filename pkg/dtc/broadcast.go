package dtc

import "github.com/taktflow/zecu-core/pkg/platform"

// BroadcastCANID is the CAN identifier newly confirmed DTCs are
// transmitted on.
const BroadcastCANID uint32 = 0x500

// Broadcaster scans a Store once per cyclic invocation and transmits any
// newly confirmed DTC exactly once per power cycle.
type Broadcaster struct {
	store       *Store
	ecuSource   uint8
	broadcasted [MaxSlots]bool
}

// NewBroadcaster returns a Broadcaster for store, tagging every
// transmitted payload with ecuSource.
func NewBroadcaster(store *Store, ecuSource uint8) *Broadcaster {
	return &Broadcaster{store: store, ecuSource: ecuSource}
}

// Scan walks every occupied slot and transmits a payload for any record
// whose status has the confirmed bit set and that has not already been
// broadcast this power cycle.
func (b *Broadcaster) Scan(can platform.CAN) error {
	for i := 0; i < MaxSlots; i++ {
		if b.broadcasted[i] {
			continue
		}
		record, err := b.store.LoadDtc(i)
		if err != nil {
			continue
		}
		if record.Status&StatusConfirmed == 0 {
			continue
		}
		frame := platform.Frame{ID: BroadcastCANID, DLC: 8}
		frame.Data[0] = byte(record.Code >> 16)
		frame.Data[1] = byte(record.Code >> 8)
		frame.Data[2] = byte(record.Code)
		frame.Data[3] = record.Status
		frame.Data[4] = b.ecuSource
		frame.Data[5] = byte(record.OccurrenceCount)
		frame.Data[6] = 0
		frame.Data[7] = 0
		if err := can.Transmit(frame); err != nil {
			return err
		}
		b.broadcasted[i] = true
	}
	return nil
}
