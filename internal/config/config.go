package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level device configuration.
type Config struct {
	Device DeviceConfig `yaml:"device"`
	CoIoT  CoIoTConfig  `yaml:"coiot"`
	HTTP   HTTPConfig   `yaml:"http"`
	MDNS   MDNSConfig   `yaml:"mdns"`
	Log    LogConfig    `yaml:"log"`
}

// DeviceConfig selects the simulated device.
type DeviceConfig struct {
	// Model is the device type: SHSW-1, SHPLG-S or SHHT-1.
	Model string `yaml:"model"`

	// ID is the unique device id (e.g. "AABBCC").
	ID string `yaml:"id"`

	// Firmware is the advertised firmware version (optional).
	Firmware string `yaml:"firmware"`
}

// CoIoTConfig configures the status protocol endpoints.
type CoIoTConfig struct {
	// Address is the unicast listen address.
	Address string `yaml:"address"`

	// Group is the multicast group and port.
	Group string `yaml:"group"`

	// Interface restricts multicast to one interface (optional).
	Interface string `yaml:"interface"`

	// IntervalMs is the announcement period in milliseconds.
	IntervalMs int `yaml:"interval_ms"`

	// WindowMs is the announcement response window in milliseconds.
	WindowMs int `yaml:"window_ms"`

	// Validity is the advertised status lifetime in seconds.
	Validity int `yaml:"validity"`
}

// Interval returns the announcement period.
func (c CoIoTConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Window returns the announcement response window.
func (c CoIoTConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// MDNSConfig configures mDNS advertising.
type MDNSConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Interface string `yaml:"interface"`
}

// LogConfig configures protocol logging.
type LogConfig struct {
	// File is the CBOR event log path. Empty disables file logging.
	File string `yaml:"file"`

	// Debug mirrors protocol events to the standard logger.
	Debug bool `yaml:"debug"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
