// file: qtree/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/pkg/x_quad"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds service, quadtree, bus and storage settings.
type Config struct {
	ServiceName string        `json:"service_name"`
	LogLevel    string        `json:"log_level"`
	HTTPAddr    string        `json:"http_addr"`
	AuthSecret  string        `json:"auth_secret"`
	Strict      bool          `json:"strict"`
	RegistryTTL time.Duration `json:"registry_ttl"`
	Color       ColorSettings `json:"color"`
	NATS        NATSSettings  `json:"nats"`
	DB          DBSettings    `json:"db"`
}

type ColorSettings struct {
	Mode      string `json:"mode"`
	Tolerance int    `json:"tolerance"`
}

// NATSSettings defines the bus connection or the embedded server.
type NATSSettings struct {
	URL        string        `json:"url"`
	Embedded   bool          `json:"embedded"`
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	Prefix     string        `json:"prefix"`
	QueueGroup string        `json:"queue_group"`
	Timeout    time.Duration `json:"timeout"`
}

// DBSettings selects the snapshot store. An empty Type disables it.
type DBSettings struct {
	Type     string `json:"type"`
	DSN      string `json:"dsn"`
	LogLevel string `json:"log_level"`
}

// Default returns a default config.
func Default() *Config {
	return &Config{
		ServiceName: "qtree",
		LogLevel:    "info",
		HTTPAddr:    ":8080",
		Color: ColorSettings{
			Mode:      string(x_color.ModeRGB),
			Tolerance: x_color.DefaultTolerance,
		},
		NATS: NATSSettings{
			URL:        "nats://127.0.0.1:4222",
			Host:       "127.0.0.1",
			Port:       4222,
			Prefix:     "qtree",
			QueueGroup: "qtree",
			Timeout:    2 * time.Second,
		},
		DB: DBSettings{
			Type:     "sqlite",
			DSN:      "qtree.db",
			LogLevel: "warn",
		},
	}
}

// Load reads a JSON config file on top of the defaults.
func Load(path string) (*Config, error) {
	return New(FromJSON(path))
}

// LoadFromEnv loads config from environment using prefix.
func LoadFromEnv(prefix string) *Config {
	cfg := Default()
	_ = FromEnv(prefix)(cfg)
	return cfg
}

// LoadWithFallback loads from QTREE_CONFIG or env vars.
func LoadWithFallback() *Config {
	if path := os.Getenv("QTREE_CONFIG"); path != "" {
		if cfg, err := New(FromJSON(path), FromEnv("QTREE_")); err == nil {
			return cfg
		}
	}
	return LoadFromEnv("QTREE_")
}

// Validate checks config for required values.
func (cfg *Config) Validate() error {
	var bad []string
	if cfg.ServiceName == "" {
		bad = append(bad, "service_name")
	}
	if cfg.LogLevel == "" {
		bad = append(bad, "log_level")
	}
	if _, err := x_color.ParseMode(cfg.Color.Mode); err != nil {
		bad = append(bad, fmt.Sprintf("color.mode(%s)", cfg.Color.Mode))
	}
	if cfg.RegistryTTL < 0 {
		bad = append(bad, "registry_ttl")
	}
	if cfg.Color.Tolerance < 0 {
		bad = append(bad, fmt.Sprintf("color.tolerance(%d)", cfg.Color.Tolerance))
	}
	if cfg.NATS.Prefix == "" {
		bad = append(bad, "nats.prefix")
	}
	if cfg.NATS.Timeout <= 0 {
		bad = append(bad, "nats.timeout")
	}
	// -1 picks a random port, 0 the nats default
	if cfg.NATS.Embedded && (cfg.NATS.Port < -1 || cfg.NATS.Port > 65535) {
		bad = append(bad, fmt.Sprintf("nats.port(%d)", cfg.NATS.Port))
	}
	switch cfg.DB.Type {
	case "":
	case "sqlite", "postgres":
		if cfg.DB.DSN == "" {
			bad = append(bad, "db.dsn")
		}
	default:
		bad = append(bad, fmt.Sprintf("db.type(%s)", cfg.DB.Type))
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(bad, ", "))
	}
	return nil
}

// Options converts the color and strictness settings into tree options.
func (cfg *Config) Options() []x_quad.Option {
	mode, err := x_color.ParseMode(cfg.Color.Mode)
	if err != nil {
		x_log.Warn().Err(err).Msg("falling back to rgb color mode")
	}
	avg, sim := x_color.Funcs(mode, cfg.Color.Tolerance)
	return []x_quad.Option{
		x_quad.WithAverage(avg),
		x_quad.WithSimilar(sim),
		x_quad.WithStrict(cfg.Strict),
	}
}

func (cfg *Config) String() string {
	data, _ := json.MarshalIndent(cfg.redacted(), "", "  ")
	return string(data)
}

func (cfg *Config) Dump(w io.Writer) {
	_, _ = io.WriteString(w, cfg.String())
}

func (cfg *Config) redacted() Config {
	c := *cfg
	if c.AuthSecret != "" {
		c.AuthSecret = "***"
	}
	return c
}
