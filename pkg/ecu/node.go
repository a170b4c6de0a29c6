// Package ecu assembles the lower-layer packages (signal, e2e, scheduler,
// dtc) into one zonal ECU, and a Network of ECUs plus the Safety
// Controller sharing one CAN segment — the role the teacher's
// node.LocalNode/network.Network pair plays for a CANopen node/network.
package ecu

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/e2e"
	"github.com/taktflow/zecu-core/pkg/platform"
	"github.com/taktflow/zecu-core/pkg/scheduler"
	"github.com/taktflow/zecu-core/pkg/signal"
)

// TickPeriod is a zonal ECU's cooperative main loop period.
const TickPeriod = 10 * time.Millisecond

// Node is one zonal ECU: a signal bus, an E2E-protected channel table, a
// DTC store with its calibration mirror, and a cooperative scheduler,
// driven from one platform.CAN/NVM/Clock/Watchdog set. Built through an
// ordered init chain mirroring node.NewLocalNode's module-by-module
// construction.
type Node struct {
	ID uint8

	logger *slog.Logger

	CAN       platform.CAN
	NVM       platform.NVM
	Clock     platform.Clock
	Watchdog  platform.Watchdog
	Signals   *signal.Bus
	E2E       *e2e.Codec
	DTC       *dtc.Store
	Cal       *dtc.CalStore
	Scheduler *scheduler.Scheduler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config bundles a Node's construction-time parameters.
type Config struct {
	ID            uint8
	SignalConfig  []signal.Config
	RunnableTable []scheduler.Runnable
	DtcPolicy     dtc.Policy
	CalDefaults   dtc.Calibration
	Logger        *slog.Logger
}

// NewNode builds a Node from the platform adapters and cfg, initializing
// every owned module in order: signal bus, E2E codec, DTC store,
// calibration store, scheduler — the same ordering node.NewLocalNode uses
// for its CANopen objects (EMCY, NMT, HB consumer, SDO servers, ..., PDOs
// last).
func NewNode(can platform.CAN, nvm platform.NVM, clock platform.Clock, watchdog platform.Watchdog, cfg Config) (*Node, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "ecu", "id", cfg.ID)

	node := &Node{
		ID:       cfg.ID,
		logger:   logger,
		CAN:      can,
		NVM:      nvm,
		Clock:    clock,
		Watchdog: watchdog,
	}

	node.Signals = signal.NewBus()
	if err := node.Signals.Init(cfg.SignalConfig); err != nil {
		return nil, err
	}

	node.E2E = e2e.NewCodec()
	node.E2E.Init()

	node.DTC = dtc.NewStore(nvm, cfg.DtcPolicy)
	node.DTC.Init()

	node.Cal = dtc.NewCalStore(nvm, cfg.CalDefaults)
	if err := node.Cal.Init(); err != nil {
		return nil, err
	}

	node.Scheduler = scheduler.NewScheduler(watchdog)
	if err := node.Scheduler.Init(cfg.RunnableTable); err != nil {
		return nil, err
	}

	logger.Info("node initialized")
	return node, nil
}

// Process runs one TickPeriod's worth of scheduler ticks: one 1 ms
// scheduler tick per millisecond of TickPeriod, so a runnable's PeriodMs
// is measured in real milliseconds. It stops at the first tick that
// returns an error.
func (n *Node) Process() error {
	for i := time.Duration(0); i < TickPeriod/time.Millisecond; i++ {
		if err := n.Scheduler.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the node's tick loop as a background goroutine,
// mirroring node.NodeProcessor's ticker-driven main loop shape.
func (n *Node) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ticker := time.NewTicker(TickPeriod)
		defer ticker.Stop()
		n.logger.Info("starting node tick loop")
		for {
			select {
			case <-ctx.Done():
				n.logger.Info("stopped node tick loop")
				return
			case <-ticker.C:
				if err := n.Process(); err != nil {
					n.logger.Error("runnable error, node latched unhealthy", "err", err)
				}
			}
		}
	}()
}

// Stop cancels the node's tick loop.
func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
}

// Wait blocks until the tick loop started by Start has exited.
func (n *Node) Wait() {
	n.wg.Wait()
}
