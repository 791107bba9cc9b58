// Package config loads and validates the YAML document describing one
// engine instance: which serial port to open, the handshake/keep-alive
// tunables spec.md leaves as implementation parameters, and (for
// host-side testing without real hardware) a fixture catalog of canned
// sensor handshakes.
package config

type Config struct {
	Engine EngineConfig `yaml:"engine"`
}

type EngineConfig struct {
	Serial SerialConfig `yaml:"serial"`
	// DefaultBaud is the baud rate the serial port is opened at. After a
	// resync the engine resets the line to engine.SpeedMin regardless.
	DefaultBaud int `yaml:"default_baud"`
	// KeepAlivePeriodMs is validated and defaulted but not passed to the
	// engine; a Session always uses engine.KeepAlivePeriod.
	KeepAlivePeriodMs int             `yaml:"keep_alive_period_ms"`
	DataErrThreshold  int             `yaml:"data_err_threshold"`
	Fixtures          []FixtureConfig `yaml:"fixtures"`
}

// SerialConfig describes the real serial port. Ignored when running
// against a fixture or the stub transport.
type SerialConfig struct {
	Address  string `yaml:"address"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

// FixtureConfig is one canned sensor handshake, keyed by sensor type, for
// exercising the engine without a physical UART sensor attached.
type FixtureConfig struct {
	Name       string        `yaml:"name"`
	SensorType uint8         `yaml:"sensor_type"`
	Modes      []FixtureMode `yaml:"modes"`
}

type FixtureMode struct {
	Name     string `yaml:"name"`
	Units    string `yaml:"units"`
	Format   string `yaml:"format"` // "s8", "s16", "s32", "float"
	DataSets int    `yaml:"data_sets"`
	Figures  int    `yaml:"figures"`
	Decimals int    `yaml:"decimals"`
}
