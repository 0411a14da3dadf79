package cmd_common

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/servs/s_quad/quad_serv"
)

// Global flags, bound by the root command.
var (
	ConfigPath string
	LogLevel   string
	JSON       bool
)

// LoadConfig resolves the config from --config, $QTREE_CONFIG or the
// environment, and applies --log-level.
func LoadConfig() (*config.Config, error) {
	cfg := config.LoadWithFallback()
	if ConfigPath != "" {
		loaded, err := config.New(config.FromJSON(ConfigPath), config.FromEnv("QTREE_"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if LogLevel != "" {
		cfg.LogLevel = LogLevel
	}
	x_log.SetLevel(cfg.LogLevel)
	return cfg, cfg.Validate()
}

// Local builds the grid file in an in-memory service and returns the
// service with the tree name (the file name without extension).
func Local(ctx context.Context, gridPath string) (*quad_serv.Service, string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, "", err
	}
	grid, err := codec.LoadGrid(gridPath)
	if err != nil {
		return nil, "", err
	}

	name := strings.TrimSuffix(filepath.Base(gridPath), filepath.Ext(gridPath))
	svc := quad_serv.New(cfg, nil, nil)
	if _, err := svc.Build(ctx, name, grid); err != nil {
		_ = svc.Stop()
		return nil, "", err
	}
	return svc, name, nil
}
