package config

import "strings"

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// Device ids are conventionally upper-case hex.
	cfg.Device.ID = strings.ToUpper(cfg.Device.ID)

	if cfg.CoIoT.Address == "" {
		cfg.CoIoT.Address = ":5683"
	}
	if cfg.CoIoT.Group == "" {
		cfg.CoIoT.Group = "224.0.1.187:5683"
	}
	if cfg.CoIoT.IntervalMs == 0 {
		cfg.CoIoT.IntervalMs = 30000
	}
	if cfg.CoIoT.WindowMs == 0 {
		cfg.CoIoT.WindowMs = 100
	}
	if cfg.CoIoT.Validity == 0 {
		cfg.CoIoT.Validity = 38400
	}
}
