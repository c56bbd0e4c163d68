package config

import (
	"fmt"
	"strings"
)

var knownModels = map[string]bool{
	"SHSW-1":  true,
	"SHPLG-S": true,
	"SHHT-1":  true,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Device.Model == "" {
		return fmt.Errorf("device: model is required")
	}
	if !knownModels[cfg.Device.Model] {
		return fmt.Errorf("device: unknown model %q", cfg.Device.Model)
	}

	if cfg.Device.ID == "" {
		return fmt.Errorf("device: id is required")
	}
	// '#' is the identifier field separator and cannot appear in an id.
	if strings.ContainsAny(cfg.Device.ID, "# ") {
		return fmt.Errorf("device: id %q must not contain '#' or spaces", cfg.Device.ID)
	}

	if cfg.CoIoT.IntervalMs < 0 {
		return fmt.Errorf("coiot: interval_ms must not be negative")
	}
	if cfg.CoIoT.WindowMs < 0 {
		return fmt.Errorf("coiot: window_ms must not be negative")
	}
	if cfg.CoIoT.Validity < 0 || cfg.CoIoT.Validity > 0xFFFF {
		return fmt.Errorf("coiot: validity %d does not fit in 16 bits", cfg.CoIoT.Validity)
	}

	if cfg.HTTP.Enabled && cfg.HTTP.Address == "" {
		return fmt.Errorf("http: address is required when enabled")
	}

	return nil
}
