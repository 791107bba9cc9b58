// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/legoev3/uartengine/internal/engine"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	e := cfg.Engine

	if e.Serial.Address == "" && len(e.Fixtures) == 0 {
		return fmt.Errorf("engine: either serial.address or at least one fixture must be set")
	}

	if e.DefaultBaud != 0 && (e.DefaultBaud < engine.SpeedMin || e.DefaultBaud > engine.SpeedMax) {
		return fmt.Errorf("engine: default_baud %d out of range [%d, %d]", e.DefaultBaud, engine.SpeedMin, engine.SpeedMax)
	}

	if e.KeepAlivePeriodMs < 0 {
		return fmt.Errorf("engine: keep_alive_period_ms must not be negative")
	}

	if e.DataErrThreshold < 0 {
		return fmt.Errorf("engine: data_err_threshold must not be negative")
	}

	seen := make(map[uint8]string)
	for _, f := range e.Fixtures {
		if f.Name == "" {
			return fmt.Errorf("fixture for sensor type %d: name is required", f.SensorType)
		}
		if prev, ok := seen[f.SensorType]; ok {
			return fmt.Errorf("fixture %q: sensor_type %d already used by fixture %q", f.Name, f.SensorType, prev)
		}
		seen[f.SensorType] = f.Name

		if f.SensorType == 0 || int(f.SensorType) > engine.TypeMax {
			return fmt.Errorf("fixture %q: sensor_type %d out of range (1-%d)", f.Name, f.SensorType, engine.TypeMax)
		}
		if len(f.Modes) == 0 {
			return fmt.Errorf("fixture %q: must declare at least one mode", f.Name)
		}
		if len(f.Modes) > engine.NumModesMax {
			return fmt.Errorf("fixture %q: declares %d modes, maximum is %d", f.Name, len(f.Modes), engine.NumModesMax)
		}
		for _, m := range f.Modes {
			if m.Name == "" {
				return fmt.Errorf("fixture %q: mode with empty name", f.Name)
			}
			switch m.Format {
			case "s8", "s16", "s32", "float":
			default:
				return fmt.Errorf("fixture %q mode %q: unknown format %q", f.Name, m.Name, m.Format)
			}
			if m.DataSets <= 0 {
				return fmt.Errorf("fixture %q mode %q: data_sets must be positive", f.Name, m.Name)
			}
		}
	}

	return nil
}
