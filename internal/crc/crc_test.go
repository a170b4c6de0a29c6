package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCcittSingle(t *testing.T) {
	crc := CRC16(0)
	crc.Single(10)
	assert.EqualValues(t, 0xA14A, crc)
}

func TestCRC8BlockMatchesValue8(t *testing.T) {
	// Data-ID 0x01 + payload {0x10,0x20,0x30,0x40,0x50,0x60}, per the
	// clean E2E round-trip scenario.
	data := []byte{0x01, 0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	acc := NewCRC8()
	acc.Block(data)
	assert.EqualValues(t, uint8(acc), Value8(data))
}

func TestCRC16RoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	a := Value16(data)
	b := Value16(data)
	assert.Equal(t, a, b, "CRC must be deterministic")

	other := Value16([]byte{0x01, 0x02, 0x03, 0x04, 0x06})
	assert.NotEqual(t, a, other, "single-byte change must change the CRC")
}
