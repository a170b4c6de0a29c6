// Package e2e implements the End-to-End protection codec applied to every
// safety-relevant CAN frame: a CRC-8/SAE-J1850 checksum keyed on a
// per-message Data-ID plus a 4-bit alive counter, guarding against both
// bit corruption and stale or re-ordered delivery. A channel that fails
// three consecutive verifications latches persistently failed until
// explicitly re-initialized.
package e2e

import "github.com/taktflow/zecu-core/internal/crc"

// MaxChannels bounds the number of independently tracked E2E channels, one
// per monitored CAN mailbox.
const MaxChannels = 32

// maxPayload is the CRC input payload cap: an 8-byte CAN frame has 6 bytes
// left for payload once the alive-counter byte and the CRC byte are
// removed.
const maxPayload = 6

// MaxConsecutiveFailures is the number of consecutive verification
// failures that latches a channel's persistent-failure flag.
const MaxConsecutiveFailures = 3

type channelState struct {
	lastAlive uint8
	firstRx   bool
	failCount uint8
	failed    bool
}

// Codec tracks per-channel E2E state across successive frames.
type Codec struct {
	channels [MaxChannels]channelState
}

// NewCodec returns a Codec with every channel primed for its first
// reception.
func NewCodec() *Codec {
	c := &Codec{}
	c.Init()
	return c
}

// Init (re-)primes every channel: no alive-counter history, zero
// consecutive failures, failure latch cleared.
func (c *Codec) Init() {
	for i := range c.channels {
		c.channels[i] = channelState{firstRx: true}
	}
}

// Encode writes an E2E-protected frame into dst: byte 0's upper nibble
// carries alive (masked to 4 bits), byte 1 carries the CRC-8 computed over
// dataID followed by payload, and payload is copied starting at byte 2.
// dst must be at least len(payload)+2 bytes, capped at 8.
func Encode(dst []byte, dataID uint8, alive uint8, payload []byte) {
	n := len(payload)
	if n > maxPayload {
		n = maxPayload
	}
	dst[0] = (alive & 0x0F) << 4
	copy(dst[2:], payload[:n])
	dst[1] = crcOf(dataID, dst[2:2+n])
}

// Check verifies frame data (length dlc) against channel msgIndex for the
// given dataID, returning whether it passed. Channels are indexed
// independently of CAN mailbox numbering by the caller's own convention.
//
// A malformed frame (dlc < 2) or an out-of-range msgIndex is rejected
// without mutating any channel state.
func (c *Codec) Check(data []byte, dlc uint8, dataID uint8, msgIndex int) bool {
	if msgIndex < 0 || msgIndex >= MaxChannels || dlc < 2 || int(dlc) > len(data) {
		return false
	}

	payloadLen := 0
	if dlc > 2 {
		payloadLen = int(dlc) - 2
	}
	if payloadLen > maxPayload {
		payloadLen = maxPayload
	}

	expected := crcOf(dataID, data[2:2+payloadLen])
	received := data[1]
	valid := expected == received

	alive := (data[0] >> 4) & 0x0F
	state := &c.channels[msgIndex]
	if valid && !state.firstRx {
		expectedAlive := (state.lastAlive + 1) & 0x0F
		valid = alive == expectedAlive
	}

	if valid {
		state.lastAlive = alive
		state.firstRx = false
		state.failCount = 0
	} else {
		state.failCount++
		if state.failCount >= MaxConsecutiveFailures {
			state.failed = true
		}
	}
	return valid
}

// IsFailed reports whether msgIndex's persistent-failure latch is set. An
// out-of-range index is reported as failed — fail-closed.
func (c *Codec) IsFailed(msgIndex int) bool {
	if msgIndex < 0 || msgIndex >= MaxChannels {
		return true
	}
	return c.channels[msgIndex].failed
}

func crcOf(dataID uint8, payload []byte) uint8 {
	acc := crc.NewCRC8()
	acc.Single(dataID)
	acc.Block(payload)
	return uint8(acc)
}
