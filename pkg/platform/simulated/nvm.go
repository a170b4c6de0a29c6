package simulated

import (
	"sync"

	"github.com/taktflow/zecu-core/pkg/platform"
)

// NVM is an in-memory stand-in for the ECU's non-volatile storage. Blocks
// are allocated on first write; reading an unwritten block is an error,
// same as reading an erased flash sector that has never been programmed.
type NVM struct {
	mu     sync.Mutex
	blocks map[uint16][]byte
}

// NewNVM returns an empty store.
func NewNVM() *NVM {
	return &NVM{blocks: make(map[uint16][]byte)}
}

// ReadBlock copies the stored block id into dst. dst's length must match
// the block's stored size exactly.
func (n *NVM) ReadBlock(id uint16, dst []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	block, ok := n.blocks[id]
	if !ok {
		return platform.ErrNoSuchBlock
	}
	if len(dst) != len(block) {
		return platform.ErrBlockSizeMismatch
	}
	copy(dst, block)
	return nil
}

// WriteBlock stores a copy of src under id, replacing whatever was there.
func (n *NVM) WriteBlock(id uint16, src []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	block := make([]byte, len(src))
	copy(block, src)
	n.blocks[id] = block
	return nil
}
