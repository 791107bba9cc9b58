// internal/config/normalize.go
package config

import (
	"time"

	"github.com/legoev3/uartengine/internal/engine"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	e := &cfg.Engine

	if e.DefaultBaud == 0 {
		e.DefaultBaud = engine.SpeedMin
	}
	if e.KeepAlivePeriodMs == 0 {
		e.KeepAlivePeriodMs = int(engine.KeepAlivePeriod / time.Millisecond)
	}
	if e.DataErrThreshold == 0 {
		e.DataErrThreshold = engine.MaxDataErr
	}

	if e.Serial.Address != "" {
		if e.Serial.DataBits == 0 {
			e.Serial.DataBits = 8
		}
		if e.Serial.StopBits == 0 {
			e.Serial.StopBits = 1
		}
		if e.Serial.Parity == "" {
			e.Serial.Parity = "N"
		}
	}
}
