package ecu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
	"github.com/taktflow/zecu-core/pkg/scheduler"
	"github.com/taktflow/zecu-core/pkg/signal"
)

func newTestNode(t *testing.T, ran *int) *Node {
	t.Helper()
	net := simulated.Network{}
	can := net.Attach()
	nvm := simulated.NewNVM()
	clock := simulated.NewClock()
	wdg := simulated.NewWatchdog()

	cfg := Config{
		ID:           1,
		SignalConfig: []signal.Config{{ID: 0x10, InitialValue: 0}},
		RunnableTable: []scheduler.Runnable{
			{Name: "tick", Func: func() error { *ran++; return nil }, PeriodMs: 10, Priority: 1, SupervisedEntity: 0},
		},
		DtcPolicy:   dtc.PolicySlotBased,
		CalDefaults: dtc.DefaultCalibration,
	}
	node, err := NewNode(can, nvm, clock, wdg, cfg)
	require.NoError(t, err)
	return node
}

func TestNewNodeInitializesEveryModule(t *testing.T) {
	var ran int
	node := newTestNode(t, &ran)
	assert.NotNil(t, node.Signals)
	assert.NotNil(t, node.E2E)
	assert.NotNil(t, node.DTC)
	assert.NotNil(t, node.Cal)
	assert.NotNil(t, node.Scheduler)

	val, err := node.Signals.Read(0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), val)
}

func TestNodeProcessDispatchesDueRunnables(t *testing.T) {
	var ran int
	node := newTestNode(t, &ran)
	require.NoError(t, node.Process())
	assert.Equal(t, 1, ran)
}

func TestNodeRejectsOversizedSignalConfig(t *testing.T) {
	net := simulated.Network{}
	can := net.Attach()
	nvm := simulated.NewNVM()
	clock := simulated.NewClock()
	wdg := simulated.NewWatchdog()

	cfg := Config{
		ID:           1,
		SignalConfig: make([]signal.Config, signal.MaxSignals+1),
		DtcPolicy:    dtc.PolicySlotBased,
		CalDefaults:  dtc.DefaultCalibration,
	}
	_, err := NewNode(can, nvm, clock, wdg, cfg)
	assert.Error(t, err)
}
