// internal/config/fixtures.go
package config

import (
	"fmt"

	"github.com/legoev3/uartengine/internal/engine"
)

// Handshake encodes f into the raw byte stream a sensor of that type
// would emit over the wire, for feeding directly into engine.Session.Feed
// in place of a real UART line.
func Handshake(f FixtureConfig) ([]byte, error) {
	spec, err := toFixtureSpec(f)
	if err != nil {
		return nil, err
	}
	return engine.BuildHandshake(spec), nil
}

// Fixture looks up the fixture catalog entry for sensorType.
func (c *Config) Fixture(sensorType uint8) (FixtureConfig, bool) {
	for _, f := range c.Engine.Fixtures {
		if f.SensorType == sensorType {
			return f, true
		}
	}
	return FixtureConfig{}, false
}

func toFixtureSpec(f FixtureConfig) (engine.FixtureSpec, error) {
	spec := engine.FixtureSpec{
		SensorType: f.SensorType,
		Modes:      make([]engine.FixtureModeSpec, len(f.Modes)),
	}
	for i, m := range f.Modes {
		format, err := toFormat(m.Format)
		if err != nil {
			return engine.FixtureSpec{}, fmt.Errorf("fixture %q mode %q: %w", f.Name, m.Name, err)
		}
		spec.Modes[i] = engine.FixtureModeSpec{
			Name:     m.Name,
			Units:    m.Units,
			RawMax:   1023,
			PctMax:   100,
			SIMax:    1,
			Format:   format,
			DataSets: byte(m.DataSets),
			Figures:  byte(m.Figures),
			Decimals: byte(m.Decimals),
		}
	}
	return spec, nil
}

func toFormat(s string) (byte, error) {
	switch s {
	case "s8":
		return engine.FormatS8, nil
	case "s16":
		return engine.FormatS16, nil
	case "s32":
		return engine.FormatS32, nil
	case "float":
		return engine.FormatFloat, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}
