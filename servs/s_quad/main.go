package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/servs/s_quad/quad_serv"
)

func main() {
	x_log.Init()

	// Load config
	cfg := config.LoadWithFallback()
	if len(os.Args) > 1 {
		loaded, err := config.New(config.FromJSON(os.Args[1]), config.FromEnv("QTREE_"))
		if err != nil {
			x_log.Error().Err(err).Str("file", os.Args[1]).Msg("failed to load config")
			os.Exit(1)
		}
		cfg = loaded
	}
	x_log.SetLevel(cfg.LogLevel)

	// Wait for termination
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := quad_serv.Run(ctx, cfg); err != nil {
		x_log.Error().Err(err).Msg("service stopped")
		os.Exit(1)
	}
	x_log.Info().Msg("done")
}
