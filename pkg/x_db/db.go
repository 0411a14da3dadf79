// file: qtree/pkg/x_db/db.go
package x_db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rskv-p/qtree/pkg/x_log"
)

var (
	ErrConfig   = errors.New("x_db: invalid config")
	ErrNotFound = errors.New("x_db: snapshot not found")
)

//---------------------
// DAO
//---------------------

// DAO stores tree snapshots through gorm.
type DAO struct {
	db  *gorm.DB
	cfg Config
	log x_log.Logger
}

// New opens the database described by cfg and migrates the snapshot schema.
func New(cfg Config) (*DAO, error) {
	dial, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	log := x_log.New("xdb")
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: newGormLogger(&log, parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	d := &DAO{db: db, cfg: cfg, log: log}
	if err := d.Migrate(); err != nil {
		return nil, err
	}

	log.Info().Str("driver", string(cfg.Type)).Msg("database initialized")
	return d, nil
}

// DB exposes the underlying connection.
func (d *DAO) DB() *gorm.DB { return d.db }

// Migrate creates or updates the snapshot tables.
func (d *DAO) Migrate() error {
	if err := d.db.AutoMigrate(&Snapshot{}, &NodeRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (d *DAO) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DAO) ctx(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}
