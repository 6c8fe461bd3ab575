// Package config loads the engine configuration from a YAML file.
// Everything has a sensible default; a missing file is not an error for
// callers that pass no --config flag.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the persistence engine.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database"`

	// CacheSize bounds the number of years held in memory by the
	// manager's LRU cache.
	CacheSize int `yaml:"cache_size"`

	// QueueSize bounds the manager's pending task queue.
	QueueSize int `yaml:"queue_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:  "histomap.db",
		CacheSize: 8,
		QueueSize: 128,
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the manager cannot run with.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	return nil
}
