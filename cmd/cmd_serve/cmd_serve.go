package cmd_serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rskv-p/qtree/cmd/cmd_common"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
	"github.com/rskv-p/qtree/servs/s_quad/quad_serv"

	"github.com/spf13/cobra"
)

var (
	subject  string
	tokenTTL time.Duration
)

// Cmd runs the service until interrupted.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST, websocket and bus service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmd_common.LoadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		x_log.Info().Str("service", cfg.ServiceName).Str("http", cfg.HTTPAddr).Msg("starting")
		if err := quad_serv.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		x_log.Info().Msg("done")
		return nil
	},
}

// TokenCmd prints a bearer token signed with the configured secret.
var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmd_common.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.AuthSecret == "" {
			return errors.New("auth_secret is not configured")
		}
		tok, err := quad_api.IssueToken([]byte(cfg.AuthSecret), subject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	TokenCmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	TokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
