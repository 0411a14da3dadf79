package cmd

import (
	"os"

	"github.com/rskv-p/qtree/cmd/cmd_bus"
	"github.com/rskv-p/qtree/cmd/cmd_common"
	"github.com/rskv-p/qtree/cmd/cmd_quad"
	"github.com/rskv-p/qtree/cmd/cmd_serve"
	"github.com/rskv-p/qtree/pkg/x_log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "qtree",
	Short:         "Quadtree color index over square pixel grids",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		x_log.Init()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		x_log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cmd_common.ConfigPath, "config", "", "config file (default $QTREE_CONFIG or env)")
	pf.StringVar(&cmd_common.LogLevel, "log-level", "", "override the configured log level")
	pf.BoolVar(&cmd_common.JSON, "json", false, "print results as JSON")

	for _, c := range cmd_quad.Cmds {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cmd_serve.Cmd)
	rootCmd.AddCommand(cmd_serve.TokenCmd)
	rootCmd.AddCommand(cmd_bus.Cmd)
}
