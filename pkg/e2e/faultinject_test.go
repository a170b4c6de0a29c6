package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taktflow/zecu-core/pkg/platform"
	"github.com/taktflow/zecu-core/pkg/platform/faultinject"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
)

const faultInjectCANID uint32 = 0x321

func TestCorruptedWireFramesLatchAfterThreeConsecutiveFailures(t *testing.T) {
	net := simulated.Network{}
	txBus := faultinject.Wrap(net.Attach())
	rxBus := net.Attach()
	require.NoError(t, rxBus.Subscribe(0, faultInjectCANID))

	txBus.CorruptNext(faultInjectCANID, 3)

	c := NewCodec()
	for alive := uint8(0); alive < 3; alive++ {
		var frame platform.Frame
		frame.ID = faultInjectCANID
		frame.DLC = 8
		Encode(frame.Data[:], dataID, alive, []byte{1, 2, 3, 4, 5, 6})
		require.NoError(t, txBus.Transmit(frame))

		rx, ok := rxBus.Receive(0)
		require.True(t, ok)
		assert.False(t, c.Check(rx.Data[:], rx.DLC, dataID, 0), "a corrupted CRC byte must fail verification")
	}
	assert.True(t, c.IsFailed(0))

	// The fourth frame is sent uncorrupted (CorruptNext only armed 3), but
	// the latch is sticky and does not clear on a later success.
	var clean platform.Frame
	clean.ID = faultInjectCANID
	clean.DLC = 8
	Encode(clean.Data[:], dataID, 3, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, txBus.Transmit(clean))
	rx, ok := rxBus.Receive(0)
	require.True(t, ok)
	assert.True(t, c.Check(rx.Data[:], rx.DLC, dataID, 0), "a clean frame still verifies on its own merits")
	assert.True(t, c.IsFailed(0), "latch is sticky; a later success must not clear it")
}

func TestDroppedWireFramesNeverReachTheReceiver(t *testing.T) {
	net := simulated.Network{}
	txBus := faultinject.Wrap(net.Attach())
	rxBus := net.Attach()
	require.NoError(t, rxBus.Subscribe(0, faultInjectCANID))

	txBus.DropNext(faultInjectCANID, 1)

	var frame platform.Frame
	frame.ID = faultInjectCANID
	frame.DLC = 8
	Encode(frame.Data[:], dataID, 0, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, txBus.Transmit(frame))

	_, ok := rxBus.Receive(0)
	assert.False(t, ok, "a dropped frame must never be delivered")
}
