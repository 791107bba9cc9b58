// internal/config/normalize_test.go
package config

import "testing"

func TestNormalize_FillsDefaults(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{Serial: SerialConfig{Address: "/dev/ttyUSB0"}}}
	Normalize(cfg)

	if cfg.Engine.DefaultBaud != 2400 {
		t.Fatalf("expected default baud 2400, got %d", cfg.Engine.DefaultBaud)
	}
	if cfg.Engine.KeepAlivePeriodMs != 100 {
		t.Fatalf("expected keep-alive 100ms, got %d", cfg.Engine.KeepAlivePeriodMs)
	}
	if cfg.Engine.DataErrThreshold != 6 {
		t.Fatalf("expected data error threshold 6, got %d", cfg.Engine.DataErrThreshold)
	}
	if cfg.Engine.Serial.DataBits != 8 || cfg.Engine.Serial.StopBits != 1 || cfg.Engine.Serial.Parity != "N" {
		t.Fatalf("unexpected serial defaults: %+v", cfg.Engine.Serial)
	}
}

func TestNormalize_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{
		DefaultBaud:       57600,
		KeepAlivePeriodMs: 250,
		DataErrThreshold:  3,
	}}
	Normalize(cfg)

	if cfg.Engine.DefaultBaud != 57600 {
		t.Fatalf("expected explicit baud preserved, got %d", cfg.Engine.DefaultBaud)
	}
	if cfg.Engine.KeepAlivePeriodMs != 250 {
		t.Fatalf("expected explicit keep-alive preserved, got %d", cfg.Engine.KeepAlivePeriodMs)
	}
	if cfg.Engine.DataErrThreshold != 3 {
		t.Fatalf("expected explicit threshold preserved, got %d", cfg.Engine.DataErrThreshold)
	}
}

func TestNormalize_NilIsNoop(t *testing.T) {
	Normalize(nil)
}
