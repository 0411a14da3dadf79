// file: qtree/pkg/x_db/config.go
package x_db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbType string

const (
	DbSqlite   DbType = "sqlite"
	DbPostgres DbType = "postgres"
)

//---------------------
// Database Config
//---------------------

// Config selects the driver and connection string of the snapshot store.
type Config struct {
	Type     DbType `json:"type"`
	DSN      string `json:"dsn"`
	LogLevel string `json:"log_level"` // silent, error, warn, info
}

var defaultCfg = Config{
	Type:     DbSqlite,
	DSN:      "qtree.db",
	LogLevel: "warn",
}

// DefaultConfig returns a copy of the default store settings.
func DefaultConfig() Config {
	return defaultCfg
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Type {
	case DbSqlite, "":
		dsn := c.DSN
		if dsn == "" {
			dsn = defaultCfg.DSN
		}
		return sqlite.Open(dsn), nil
	case DbPostgres:
		if c.DSN == "" {
			return nil, fmt.Errorf("%w: postgres dsn is required", ErrConfig)
		}
		return postgres.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database type %q", ErrConfig, c.Type)
	}
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
