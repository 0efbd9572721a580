package config

import (
	"fmt"
	"strings"
)

// PresetConfig returns a Config for the named deployment preset.
// Supported presets: "local", "stateless", "cluster".
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "local":
		cfg.Storage.Driver = "sqlite"
		cfg.RateLimit.Store = "memory"

	case "stateless":
		cfg.Storage.Driver = "none"
		cfg.RateLimit.Store = "memory"

	case "cluster":
		cfg.Storage.Driver = "redis"
		cfg.RateLimit.Store = "redis"
		cfg.RateLimit.Limit = 100
		cfg.Events.Driver = "kafka"
		cfg.Events.Brokers = "localhost:9092"
		cfg.Server.LogFormat = "json"

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	return cfg, nil
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"local", "stateless", "cluster"}
}
