// Command zecu-replay inspects an NVM image captured from a zonal ECU: it
// dumps every occupied DTC slot and the calibration block, the same
// information an ECU's own bootup Init pass would have recovered.
package main

import (
	"encoding/gob"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/platform"
)

// fileNVM is a platform.NVM backed by a flat file of gob-encoded blocks —
// good enough to load a captured NVM image for offline inspection,
// without pulling in a real flash driver this tool has no use for.
type fileNVM struct {
	blocks map[uint16][]byte
}

func loadFileNVM(path string) (*fileNVM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	blocks := make(map[uint16][]byte)
	if err := gob.NewDecoder(f).Decode(&blocks); err != nil {
		return nil, fmt.Errorf("decode nvm image: %w", err)
	}
	return &fileNVM{blocks: blocks}, nil
}

func (n *fileNVM) ReadBlock(id uint16, dst []byte) error {
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

func (n *fileNVM) WriteBlock(id uint16, src []byte) error {
	block := make([]byte, len(src))
	copy(block, src)
	n.blocks[id] = block
	return nil
}

func main() {
	imagePath := flag.String("image", "", "path to a captured NVM image (gob-encoded block map)")
	policy := flag.String("policy", "slot", "dtc store policy the image was captured under: slot or circular")
	flag.Parse()

	logger := slog.Default()

	if *imagePath == "" {
		logger.Error("-image is required")
		os.Exit(1)
	}

	nvm, err := loadFileNVM(*imagePath)
	if err != nil {
		logger.Error("failed to load nvm image", "err", err)
		os.Exit(1)
	}

	dtcPolicy := dtc.PolicySlotBased
	if *policy == "circular" {
		dtcPolicy = dtc.PolicyCircular
	}

	store := dtc.NewStore(nvm, dtcPolicy)
	store.Init()

	fmt.Printf("dtc store: %d/%d slots occupied\n", store.Count(), dtc.MaxSlots)
	for i := 0; i < dtc.MaxSlots; i++ {
		record, err := store.LoadDtc(i)
		if err != nil {
			continue
		}
		fmt.Printf("  slot %2d: code=0x%06X status=0x%02X occurrences=%d\n",
			i, record.Code, record.Status, record.OccurrenceCount)
	}

	cal := dtc.NewCalStore(nvm, dtc.DefaultCalibration)
	if err := cal.Init(); err != nil {
		logger.Error("failed to load calibration block", "err", err)
		os.Exit(1)
	}
	calData, defaulted := cal.ReadCal()
	fmt.Printf("\ncalibration: defaulted=%v\n", defaulted)
	fmt.Printf("  plaus_abs_threshold_ma=%d plaus_debounce_ticks=%d stuck_threshold=%d stuck_cycles=%d\n",
		calData.PlausAbsThresholdMa, calData.PlausDebounceTicks, calData.StuckThreshold, calData.StuckCycles)
	fmt.Printf("  torque_lut=%v\n", calData.TorqueLut)
}
