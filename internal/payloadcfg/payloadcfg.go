// Package payloadcfg loads the payload side's configuration record from
// environment variables (spec.md §6), with an optional YAML overlay file
// for bench testing without exporting a dozen env vars. It follows the
// teacher's src/config.go shape of a table of recognized keys with typed,
// validated conversion, adapted from a text config file to environment
// variables per SPEC_FULL.md §10.
package payloadcfg

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the payload's single configuration record (spec.md §6).
type Config struct {
	Callsign     string  `yaml:"callsign"`
	FrequencyMHz float64 `yaml:"frequency_mhz"`
	TXPowerDBm   int     `yaml:"tx_power_dbm"`

	TXPeriodSec int `yaml:"tx_period_sec"`
	TXPauseSec  int `yaml:"tx_pause_sec"`

	TelemetryIntervalPackets int `yaml:"telemetry_interval_packets"`
	ImageMetaIntervalPackets int `yaml:"image_meta_interval_packets"`
	CaptureIntervalSec       int `yaml:"capture_interval_sec"`

	FountainSymbolSize      int `yaml:"fountain_symbol_size"`
	FountainOverheadPercent int `yaml:"fountain_overhead_percent"`
	MaxStoredImages         int `yaml:"max_stored_images"`

	WatchdogEnabled    bool `yaml:"watchdog_enabled"`
	RebootOnFatalError bool `yaml:"reboot_on_fatal_error"`
	SimulateGPS        bool `yaml:"simulate_gps"`
	SimulateCamera     bool `yaml:"simulate_camera"`
}

// Default returns the config with the repository's documented defaults
// (spec.md §4.2, §4.3, §4.6), before env/YAML overrides are applied.
func Default() Config {
	return Config{
		TXPeriodSec:              3,
		TXPauseSec:               10,
		TelemetryIntervalPackets: 10,
		ImageMetaIntervalPackets: 100,
		CaptureIntervalSec:       120,
		FountainSymbolSize:       200,
		FountainOverheadPercent:  25,
		MaxStoredImages:          5,
		WatchdogEnabled:          true,
	}
}

// Load builds a Config starting from Default, applying an optional YAML
// overlay file (if path is non-empty), then environment variables (which
// take precedence over both), and validates the result.
func Load(yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("payloadcfg: reading overlay: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("payloadcfg: parsing overlay: %w", err)
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
	if v, ok := getInt("HAB_TX_POWER_DBM"); ok {
		cfg.TXPowerDBm = v
	}
	if v, ok := getInt("HAB_TX_PERIOD_SEC"); ok {
		cfg.TXPeriodSec = v
	}
	if v, ok := getInt("HAB_TX_PAUSE_SEC"); ok {
		cfg.TXPauseSec = v
	}
	if v, ok := getInt("HAB_TELEMETRY_INTERVAL_PACKETS"); ok {
		cfg.TelemetryIntervalPackets = v
	}
	if v, ok := getInt("HAB_IMAGE_META_INTERVAL_PACKETS"); ok {
		cfg.ImageMetaIntervalPackets = v
	}
	if v, ok := getInt("HAB_CAPTURE_INTERVAL_SEC"); ok {
		cfg.CaptureIntervalSec = v
	}
	if v, ok := getInt("HAB_FOUNTAIN_SYMBOL_SIZE"); ok {
		cfg.FountainSymbolSize = v
	}
	if v, ok := getInt("HAB_FOUNTAIN_OVERHEAD_PERCENT"); ok {
		cfg.FountainOverheadPercent = v
	}
	if v, ok := getInt("HAB_MAX_STORED_IMAGES"); ok {
		cfg.MaxStoredImages = v
	}
	if v, ok := getBool("HAB_WATCHDOG_ENABLED"); ok {
		cfg.WatchdogEnabled = v
	}
	if v, ok := getBool("HAB_REBOOT_ON_FATAL_ERROR"); ok {
		cfg.RebootOnFatalError = v
	}
	if v, ok := getBool("HAB_SIMULATE_GPS"); ok {
		cfg.SimulateGPS = v
	}
	if v, ok := getBool("HAB_SIMULATE_CAMERA"); ok {
		cfg.SimulateCamera = v
	}
}

// validate enforces the ranges spec.md §6 names explicitly.
func (c Config) validate() error {
	if c.TXPowerDBm < 0 || c.TXPowerDBm > 22 {
		return fmt.Errorf("payloadcfg: tx_power_dbm %d out of range [0,22]", c.TXPowerDBm)
	}
	if c.TXPeriodSec < 1 {
		return fmt.Errorf("payloadcfg: tx_period_sec must be >= 1, got %d", c.TXPeriodSec)
	}
	if c.TXPauseSec < 0 {
		return fmt.Errorf("payloadcfg: tx_pause_sec must be >= 0, got %d", c.TXPauseSec)
	}
	if c.TelemetryIntervalPackets < 1 {
		return fmt.Errorf("payloadcfg: telemetry_interval_packets must be >= 1, got %d", c.TelemetryIntervalPackets)
	}
	if c.ImageMetaIntervalPackets < 1 {
		return fmt.Errorf("payloadcfg: image_meta_interval_packets must be >= 1, got %d", c.ImageMetaIntervalPackets)
	}
	if c.CaptureIntervalSec < 5 || c.CaptureIntervalSec > 3600 {
		return fmt.Errorf("payloadcfg: capture_interval_sec %d out of range [5,3600]", c.CaptureIntervalSec)
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
