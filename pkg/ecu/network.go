package ecu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/platform"
	"github.com/taktflow/zecu-core/pkg/safety"
)

var (
	// ErrIDConflict matches the teacher's own network.ErrIdConflict —
	// adding a Node whose ID already exists on the Network.
	ErrIDConflict = errors.New("ecu id already exists on network")
	ErrNotFound   = errors.New("ecu id not found on network")
)

// Network owns the shared platform.CAN segment, a map of zonal ECU Nodes,
// and (optionally) the Safety Controller supervising them — the role the
// teacher's network.Network plays for a set of CANopen LocalNodes, plus
// the Safety Controller wiring spec.md §2's layer table adds on top.
type Network struct {
	logger *slog.Logger

	can   platform.CAN
	nodes map[uint8]*Node

	Safety *safety.Controller
}

// NewNetwork returns a Network sharing one CAN segment.
func NewNetwork(can platform.CAN, logger *slog.Logger) *Network {
	if logger == nil {
		logger = slog.Default()
	}
	return &Network{
		logger: logger.With("service", "network"),
		can:    can,
		nodes:  make(map[uint8]*Node),
	}
}

// AddNode registers node on the network. It is an error to add two nodes
// with the same ID.
func (net *Network) AddNode(node *Node) error {
	if _, exists := net.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %d", ErrIDConflict, node.ID)
	}
	net.nodes[node.ID] = node
	return nil
}

// Node returns the registered node with the given ID.
func (net *Network) Node(id uint8) (*Node, error) {
	node, ok := net.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return node, nil
}

// AttachSafetyController registers the network's Safety Controller. Only
// one may be attached; the zero value means the network has none.
func (net *Network) AttachSafetyController(controller *safety.Controller) {
	net.Safety = controller
}

// BroadcastDtc runs a dtc.Broadcaster's scan for every node's DTC store
// against the shared CAN segment — each node's freshly-confirmed faults
// get announced once per power cycle, matching spec.md §4.9's broadcast
// operation.
func (net *Network) BroadcastDtc(broadcasters map[uint8]*dtc.Broadcaster) error {
	for id, b := range broadcasters {
		if err := b.Scan(net.can); err != nil {
			return fmt.Errorf("ecu %d: %w", id, err)
		}
	}
	return nil
}

// Run starts every registered node's tick loop and, if attached, the
// Safety Controller's loop, all sharing ctx. Call Stop to cancel them and
// Wait to block until every loop has exited.
func (net *Network) Run(ctx context.Context, safetyInputs func() safety.Inputs) {
	for _, node := range net.nodes {
		node.Start(ctx)
	}
	if net.Safety != nil && safetyInputs != nil {
		net.Safety.Start(ctx, safetyInputs)
	}
}

// Stop cancels every registered node's tick loop and the Safety
// Controller's loop, if attached.
func (net *Network) Stop() {
	for _, node := range net.nodes {
		node.Stop()
	}
	if net.Safety != nil {
		net.Safety.Stop()
	}
}

// Wait blocks until every loop started by Run has exited.
func (net *Network) Wait() {
	for _, node := range net.nodes {
		node.Wait()
	}
	if net.Safety != nil {
		net.Safety.Wait()
	}
}
