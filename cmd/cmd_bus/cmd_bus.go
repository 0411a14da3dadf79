package cmd_bus

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/rskv-p/qtree/cmd/cmd_common"
	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/registry"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
	"github.com/rskv-p/qtree/servs/s_quad/quad_client"
)

var level int

// Cmd groups the commands talking to a running service over NATS.
var Cmd = &cobra.Command{
	Use:   "bus",
	Short: "Query a running service over NATS",
}

// connect dials the configured server and returns a client with a closer.
func connect() (*quad_client.Client, func(), error) {
	cfg, err := cmd_common.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("qtree-cli"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", cfg.NATS.URL, err)
	}
	c := quad_client.New(nc, cfg.NATS.Prefix).WithTimeout(cfg.NATS.Timeout)
	return c, nc.Close, nil
}

var buildCmd = &cobra.Command{
	Use:   "build [name] [grid]",
	Short: "Upload a grid file and build its tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grid, err := codec.LoadGrid(args[1])
		if err != nil {
			return err
		}
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		info, err := c.Build(cmd.Context(), args[0], grid)
		if err != nil {
			return err
		}
		return cmd_common.PrintTrees(cmd.OutOrStdout(), []quad_api.TreeInfo{info})
	},
}

var pixelsCmd = &cobra.Command{
	Use:   "pixels [name]",
	Short: "List the nodes at --level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		nodes, err := c.Pixels(cmd.Context(), args[0], level)
		if err != nil {
			return err
		}
		return cmd_common.PrintNodes(cmd.OutOrStdout(), nodes)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match [name] [color]",
	Short: "Find nodes at --level similar to a color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := x_color.Parse(args[1])
		if err != nil {
			return err
		}
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		m, err := c.Match(cmd.Context(), args[0], color, level)
		if err != nil {
			return err
		}
		return cmd_common.PrintMatch(cmd.OutOrStdout(), m)
	},
}

var nodeCmd = &cobra.Command{
	Use:   "node [name] [x] [y]",
	Short: "Locate the node at --level containing a point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad x %q", args[1])
		}
		y, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad y %q", args[2])
		}
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := c.Locate(cmd.Context(), args[0], level, x, y)
		if err != nil {
			return err
		}
		return cmd_common.PrintNode(cmd.OutOrStdout(), n)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the trees of the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		trees, err := c.List(cmd.Context())
		if err != nil {
			return err
		}
		return cmd_common.PrintTrees(cmd.OutOrStdout(), trees)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Drop a tree and its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := c.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print registry events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		return c.Watch(ctx, func(e registry.Event) {
			fmt.Fprintf(out, "%-10s %s size=%d\n", e.Type, e.Name, e.Size)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{pixelsCmd, matchCmd, nodeCmd} {
		c.Flags().IntVarP(&level, "level", "l", 0, "tree level (0 is the root)")
	}
	Cmd.AddCommand(buildCmd, pixelsCmd, matchCmd, nodeCmd, listCmd, removeCmd, watchCmd)
}
