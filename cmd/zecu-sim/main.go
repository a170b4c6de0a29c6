// Command zecu-sim runs a deterministic in-process simulation of a zonal
// network: three zonal ECUs (CVC, FZC, RZC) and the Safety Controller
// sharing one simulated CAN segment, ticking until the -duration elapses
// or the process is interrupted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/ecu"
	"github.com/taktflow/zecu-core/pkg/platform/simulated"
	"github.com/taktflow/zecu-core/pkg/safety"
	"github.com/taktflow/zecu-core/pkg/scheduler"
	sigbus "github.com/taktflow/zecu-core/pkg/signal"
)

const (
	ecuCvc uint8 = safety.ECUCvc
	ecuFzc uint8 = safety.ECUFzc
	ecuRzc uint8 = safety.ECURzc
)

func buildNode(id uint8, can *simulated.Bus, logger *slog.Logger) (*ecu.Node, error) {
	return ecu.NewNode(can, simulated.NewNVM(), simulated.NewClock(), simulated.NewWatchdog(), ecu.Config{
		ID:           id,
		SignalConfig: []sigbus.Config{{ID: 0x01, InitialValue: 0}},
		RunnableTable: []scheduler.Runnable{
			{Name: "tick", Func: func() error { return nil }, PeriodMs: 10, Priority: 1, SupervisedEntity: scheduler.NoSupervision},
		},
		DtcPolicy:   dtc.PolicySlotBased,
		CalDefaults: dtc.DefaultCalibration,
		Logger:      logger,
	})
}

func main() {
	duration := flag.Duration("duration", 5*time.Second, "how long to run the simulation before exiting")
	flag.Parse()

	logger := slog.Default()

	net := simulated.Network{}
	cvcBus := net.Attach()
	fzcBus := net.Attach()
	rzcBus := net.Attach()
	scBus := net.Attach()

	network := ecu.NewNetwork(scBus, logger)

	for id, bus := range map[uint8]*simulated.Bus{ecuCvc: cvcBus, ecuFzc: fzcBus, ecuRzc: rzcBus} {
		node, err := buildNode(id, bus, logger)
		if err != nil {
			logger.Error("failed to build ecu node", "id", id, "err", err)
			os.Exit(1)
		}
		if err := network.AddNode(node); err != nil {
			logger.Error("failed to add ecu node", "id", id, "err", err)
			os.Exit(1)
		}
	}

	gpio := simulated.NewGPIO()
	hw := simulated.NewHardwareTests()
	controller := safety.NewController(scBus, gpio, hw, logger)
	controller.Init()
	if failStep := controller.Startup(); failStep != 0 {
		logger.Error("safety controller startup self-test failed", "step", failStep)
		os.Exit(1)
	}
	controller.Relay.Energize()
	network.AttachSafetyController(controller)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeout := context.WithTimeout(ctx, *duration)
	defer timeout()

	network.Run(ctx, func() safety.Inputs {
		return safety.Inputs{HeartbeatRx: [safety.ECUCount]bool{true, true, true}}
	})

	<-ctx.Done()
	network.Stop()
	network.Wait()
	logger.Info("simulation finished")
}
