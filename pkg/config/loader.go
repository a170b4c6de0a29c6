// Package config loads the runnable descriptor table and calibration
// defaults from an INI file, the same way the teacher's pkg/od/parser_v1.go
// loads a CANopen EDS: one section per entry, `gopkg.in/ini.v1` doing the
// key/value parsing, a small regexp picking sections apart by name.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/taktflow/zecu-core/pkg/dtc"
	"github.com/taktflow/zecu-core/pkg/scheduler"
)

var runnableSectionRe = regexp.MustCompile(`^runnable\.(.+)$`)

// LoadRunnableTable parses every `[runnable.<name>]` section of file into a
// scheduler.Runnable descriptor (period_ms, priority, and an optional
// supervised_entity; Func is left nil for the caller to fill in, since the
// INI file has no way to name a Go function). file may be a path, []byte,
// or io.Reader — anything ini.Load accepts.
func LoadRunnableTable(file any) ([]scheduler.Runnable, error) {
	cfg, err := ini.Load(file)
	if err != nil {
		return nil, err
	}

	var runnables []scheduler.Runnable
	for _, section := range cfg.Sections() {
		m := runnableSectionRe.FindStringSubmatch(section.Name())
		if m == nil {
			continue
		}
		name := m[1]

		periodMs, err := section.Key("period_ms").Uint()
		if err != nil {
			return nil, fmt.Errorf("%w: runnable %q missing period_ms", ErrMissingKey, name)
		}
		priority, err := section.Key("priority").Int()
		if err != nil {
			return nil, fmt.Errorf("%w: runnable %q missing priority", ErrMissingKey, name)
		}

		supervised := scheduler.NoSupervision
		if key, err := section.GetKey("supervised_entity"); err == nil {
			v, err := key.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: runnable %q has non-numeric supervised_entity", ErrInvalidValue, name)
			}
			supervised = uint8(v)
		}

		runnables = append(runnables, scheduler.Runnable{
			Name:             name,
			PeriodMs:         uint32(periodMs),
			Priority:         priority,
			SupervisedEntity: supervised,
		})
	}
	return runnables, nil
}

// LoadCalibration parses the `[calibration]` section of file into a
// dtc.Calibration, falling back to dtc.DefaultCalibration for any key left
// unset. torque_lut is a comma-separated list of exactly
// dtc.TorqueLutSize values.
func LoadCalibration(file any) (dtc.Calibration, error) {
	cfg, err := ini.Load(file)
	if err != nil {
		return dtc.Calibration{}, err
	}

	cal := dtc.DefaultCalibration
	section, err := cfg.GetSection("calibration")
	if err != nil {
		return cal, nil
	}

	if key, err := section.GetKey("plaus_abs_threshold_ma"); err == nil {
		v, err := key.Uint()
		if err != nil {
			return dtc.Calibration{}, fmt.Errorf("%w: plaus_abs_threshold_ma", ErrInvalidValue)
		}
		cal.PlausAbsThresholdMa = uint16(v)
	}
	if key, err := section.GetKey("plaus_debounce_ticks"); err == nil {
		v, err := key.Uint()
		if err != nil {
			return dtc.Calibration{}, fmt.Errorf("%w: plaus_debounce_ticks", ErrInvalidValue)
		}
		cal.PlausDebounceTicks = uint8(v)
	}
	if key, err := section.GetKey("stuck_threshold"); err == nil {
		v, err := key.Uint()
		if err != nil {
			return dtc.Calibration{}, fmt.Errorf("%w: stuck_threshold", ErrInvalidValue)
		}
		cal.StuckThreshold = uint16(v)
	}
	if key, err := section.GetKey("stuck_cycles"); err == nil {
		v, err := key.Uint()
		if err != nil {
			return dtc.Calibration{}, fmt.Errorf("%w: stuck_cycles", ErrInvalidValue)
		}
		cal.StuckCycles = uint16(v)
	}
	if key, err := section.GetKey("torque_lut"); err == nil {
		lut, err := parseTorqueLut(key.Value())
		if err != nil {
			return dtc.Calibration{}, err
		}
		cal.TorqueLut = lut
	}

	return cal, nil
}

func parseTorqueLut(value string) ([dtc.TorqueLutSize]uint16, error) {
	var lut [dtc.TorqueLutSize]uint16
	fields := strings.Split(value, ",")
	if len(fields) != dtc.TorqueLutSize {
		return lut, fmt.Errorf("%w: torque_lut needs %d entries, got %d", ErrInvalidValue, dtc.TorqueLutSize, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
		if err != nil {
			return lut, fmt.Errorf("%w: torque_lut entry %d: %v", ErrInvalidValue, i, err)
		}
		lut[i] = uint16(v)
	}
	return lut, nil
}
