package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Device: DeviceConfig{Model: "SHSW-1", ID: "aabbcc"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing model", func(c *Config) { c.Device.Model = "" }, "model is required"},
		{"unknown model", func(c *Config) { c.Device.Model = "SHSW-99" }, "unknown model"},
		{"missing id", func(c *Config) { c.Device.ID = "" }, "id is required"},
		{"id with separator", func(c *Config) { c.Device.ID = "AA#BB" }, "must not contain"},
		{"negative interval", func(c *Config) { c.CoIoT.IntervalMs = -1 }, "interval_ms"},
		{"negative window", func(c *Config) { c.CoIoT.WindowMs = -1 }, "window_ms"},
		{"validity too large", func(c *Config) { c.CoIoT.Validity = 70000 }, "16 bits"},
		{"http without address", func(c *Config) { c.HTTP.Enabled = true }, "address is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	Normalize(cfg)

	assert.Equal(t, "AABBCC", cfg.Device.ID)
	assert.Equal(t, ":5683", cfg.CoIoT.Address)
	assert.Equal(t, "224.0.1.187:5683", cfg.CoIoT.Group)
	assert.Equal(t, 30000, cfg.CoIoT.IntervalMs)
	assert.Equal(t, 100, cfg.CoIoT.WindowMs)
	assert.Equal(t, 38400, cfg.CoIoT.Validity)
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.CoIoT.IntervalMs = 5000
	Normalize(cfg)

	assert.Equal(t, 5000, cfg.CoIoT.IntervalMs)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
device:
  model: SHPLG-S
  id: "112233"
coiot:
  interval_ms: 5000
http:
  enabled: true
  address: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SHPLG-S", cfg.Device.Model)
	assert.Equal(t, "112233", cfg.Device.ID)
	assert.Equal(t, 5000, cfg.CoIoT.IntervalMs)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Address)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
