// file: qtree/config/option.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Option is a functional config initializer.
type Option func(*Config) error

// New applies opts on top of Default.
func New(opts ...Option) (*Config, error) {
	cfg := Default()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithValues decodes a loosely typed map, keyed like the JSON file, into the config.
func WithValues(values map[string]any) Option {
	return func(c *Config) error {
		return decode(values, c)
	}
}

// FromJSON loads config from a JSON file. ${VAR} references are expanded first.
func FromJSON(path string) Option {
	return func(c *Config) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		data = ReplaceEnvVars(data)

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse config json: %w", err)
		}
		return decode(raw, c)
	}
}

// FromEnv overrides values from environment variables with prefix.
func FromEnv(prefix string) Option {
	return func(c *Config) error {
		c.ServiceName = GetEnvStr(prefix+"SERVICE_NAME", c.ServiceName)
		c.LogLevel = GetEnvStr(prefix+"LOG_LEVEL", c.LogLevel)
		c.HTTPAddr = GetEnvStr(prefix+"HTTP_ADDR", c.HTTPAddr)
		c.AuthSecret = GetEnvStr(prefix+"AUTH_SECRET", c.AuthSecret)
		c.Strict = GetEnvBool(prefix+"STRICT", c.Strict)
		c.RegistryTTL = GetEnvDuration(prefix+"REGISTRY_TTL", c.RegistryTTL)

		c.Color.Mode = GetEnvStr(prefix+"COLOR_MODE", c.Color.Mode)
		c.Color.Tolerance = GetEnvInt(prefix+"COLOR_TOLERANCE", c.Color.Tolerance)

		c.NATS.URL = GetEnvStr(prefix+"NATS_URL", c.NATS.URL)
		c.NATS.Embedded = GetEnvBool(prefix+"NATS_EMBEDDED", c.NATS.Embedded)
		c.NATS.Host = GetEnvStr(prefix+"NATS_HOST", c.NATS.Host)
		c.NATS.Port = GetEnvInt(prefix+"NATS_PORT", c.NATS.Port)
		c.NATS.Prefix = GetEnvStr(prefix+"NATS_PREFIX", c.NATS.Prefix)
		c.NATS.QueueGroup = GetEnvStr(prefix+"NATS_QUEUE", c.NATS.QueueGroup)
		c.NATS.Timeout = GetEnvDuration(prefix+"NATS_TIMEOUT", c.NATS.Timeout)

		c.DB.Type = GetEnvStr(prefix+"DB_TYPE", c.DB.Type)
		c.DB.DSN = GetEnvStr(prefix+"DB_DSN", c.DB.DSN)
		c.DB.LogLevel = GetEnvStr(prefix+"DB_LOG_LEVEL", c.DB.LogLevel)
		return nil
	}
}

func decode(input map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// secondsToDurationHook treats bare JSON numbers as seconds.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(durationZero) {
		return data, nil
	}
	if f, ok := data.(float64); ok {
		return fromSeconds(f), nil
	}
	return data, nil
}

// ReplaceEnvVars replaces ${ENV_VAR} in raw JSON string.
func ReplaceEnvVars(data []byte) []byte {
	return []byte(os.Expand(string(data), func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}))
}
