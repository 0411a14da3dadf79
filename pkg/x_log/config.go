package x_log

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfig names the variable pointing at the logger config file.
const EnvConfig = "XLOG_CONFIG"

// Config controls console and file output of the global logger.
type Config struct {
	Level   string     `json:"level"`
	Style   string     `json:"style"` // dark or light
	Console bool       `json:"console"`
	File    FileConfig `json:"file"`
}

// FileConfig is the rotated log file. Sizes are in MB, ages in days.
type FileConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	Colored    bool   `json:"colored"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

var defaultConfig = Config{
	Level:   "info",
	Style:   "dark",
	Console: true,
	File: FileConfig{
		Path:       "logs/qtree.log",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
	},
}

// DefaultConfig returns a copy of the built-in configuration.
func DefaultConfig() Config {
	return defaultConfig
}

// LoadConfig reads a JSON file over the defaults. An empty path means
// $XLOG_CONFIG; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read log config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse log config %s: %w", path, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize restores defaults for values zeroed out by a config file.
func (c *Config) normalize() {
	if c.Level == "" {
		c.Level = defaultConfig.Level
	}
	if c.Style == "" {
		c.Style = defaultConfig.Style
	}
	f, d := &c.File, defaultConfig.File
	if f.Path == "" {
		f.Path = d.Path
	}
	f.MaxSizeMB = positive(f.MaxSizeMB, d.MaxSizeMB)
	f.MaxBackups = positive(f.MaxBackups, d.MaxBackups)
	f.MaxAgeDays = positive(f.MaxAgeDays, d.MaxAgeDays)
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
