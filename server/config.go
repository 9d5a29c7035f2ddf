package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the deployment options of the task server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// Realm is the Basic Auth realm presented to clients.
	Realm string `yaml:"realm"`
	// LookbackDays bounds the today view's overdue window.
	LookbackDays int `yaml:"lookback_days"`
	// DatabasePath points at the SQLite file. Empty selects the in-memory
	// store, which loses all data on restart.
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig provides sensible defaults for a local deployment
var DefaultConfig = Config{
	Addr:         ":8080",
	Realm:        "dailyflo",
	LookbackDays: 14,
}

// LoadConfig reads a YAML config file over the defaults. A missing path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if cfg.LookbackDays < 0 {
		return cfg, fmt.Errorf("lookback_days must not be negative")
	}
	return cfg, nil
}
