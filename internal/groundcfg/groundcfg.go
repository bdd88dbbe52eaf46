// Package groundcfg loads the ground station's configuration record from
// environment variables, mirroring internal/payloadcfg's shape for the
// radio and timeout keys and adding the image-engine specific keys
// spec.md §6 names for the ground side.
package groundcfg

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the ground station's single configuration record (spec.md §6).
type Config struct {
	Callsign     string  `yaml:"callsign"`
	FrequencyMHz float64 `yaml:"frequency_mhz"`

	MaxPendingImages int `yaml:"max_pending_images"`
	ImageTimeoutSec  int `yaml:"image_timeout_sec"`

	GroundLatDeg float64 `yaml:"ground_lat_deg"`
	GroundLonDeg float64 `yaml:"ground_lon_deg"`

	SimulateRadio bool `yaml:"simulate_radio"`
}

// Default returns the ground config with the repository's documented
// defaults (spec.md §4.5).
func Default() Config {
	return Config{
		MaxPendingImages: 10,
		ImageTimeoutSec:  300,
	}
}

// Load builds a Config starting from Default, applying an optional YAML
// overlay file, then environment variables, and validates the result.
func Load(yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("groundcfg: reading overlay: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("groundcfg: parsing overlay: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("HAB_CALLSIGN"); ok {
		cfg.Callsign = v
	}
	if v, ok := getFloat("HAB_FREQUENCY_MHZ"); ok {
		cfg.FrequencyMHz = v
	}
	if v, ok := getInt("HAB_MAX_PENDING_IMAGES"); ok {
		cfg.MaxPendingImages = v
	}
	if v, ok := getInt("HAB_IMAGE_TIMEOUT_SEC"); ok {
		cfg.ImageTimeoutSec = v
	}
	if v, ok := getFloat("HAB_GROUND_LAT_DEG"); ok {
		cfg.GroundLatDeg = v
	}
	if v, ok := getFloat("HAB_GROUND_LON_DEG"); ok {
		cfg.GroundLonDeg = v
	}
	if v, ok := getBool("HAB_SIMULATE_RADIO"); ok {
		cfg.SimulateRadio = v
	}
}

func (c Config) validate() error {
	if c.MaxPendingImages < 1 {
		return fmt.Errorf("groundcfg: max_pending_images must be >= 1, got %d", c.MaxPendingImages)
	}
	if c.ImageTimeoutSec < 1 {
		return fmt.Errorf("groundcfg: image_timeout_sec must be >= 1, got %d", c.ImageTimeoutSec)
	}
	return nil
}

func getInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getFloat(key string) (float64, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func getBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
