package cmd_quad

import (
	"fmt"
	"strconv"

	"github.com/rskv-p/qtree/cmd/cmd_common"
	"github.com/rskv-p/qtree/pkg/x_color"

	"github.com/spf13/cobra"
)

var level int

// Cmds are the local commands working on a grid file.
var Cmds = []*cobra.Command{buildCmd, pixelsCmd, matchCmd, nodeCmd, dumpCmd, shellCmd}

var buildCmd = &cobra.Command{
	Use:   "build [grid]",
	Short: "Build the tree of a grid file and print its shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		trees, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		out := trees[:0]
		for _, t := range trees {
			if t.Name == name {
				out = append(out, t)
			}
		}
		return cmd_common.PrintTrees(cmd.OutOrStdout(), out)
	},
}

var pixelsCmd = &cobra.Command{
	Use:   "pixels [grid]",
	Short: "List the nodes at --level in quadrant order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		nodes, err := svc.Pixels(cmd.Context(), name, level)
		if err != nil {
			return err
		}
		return cmd_common.PrintNodes(cmd.OutOrStdout(), nodes)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match [grid] [color]",
	Short: "Find nodes at --level similar to a color (decimal, 0x or #rrggbb)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := x_color.Parse(args[1])
		if err != nil {
			return err
		}
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		m, err := svc.Match(cmd.Context(), name, color, level)
		if err != nil {
			return err
		}
		return cmd_common.PrintMatch(cmd.OutOrStdout(), m)
	},
}

var nodeCmd = &cobra.Command{
	Use:   "node [grid] [x] [y]",
	Short: "Locate the node at --level containing a point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := point(args[1], args[2])
		if err != nil {
			return err
		}
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		n, err := svc.Locate(cmd.Context(), name, level, x, y)
		if err != nil {
			return err
		}
		return cmd_common.PrintNode(cmd.OutOrStdout(), n)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump [grid]",
	Short: "Print the whole tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		tree, err := svc.Tree(cmd.Context(), name)
		if err != nil {
			return err
		}
		tree.Dump(cmd.OutOrStdout())
		return nil
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell [grid]",
	Short: "Query a grid interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := cmd_common.Local(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Stop()

		return NewShell(svc, name).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func point(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y %q", ys)
	}
	return x, y, nil
}

func init() {
	for _, c := range []*cobra.Command{pixelsCmd, matchCmd, nodeCmd} {
		c.Flags().IntVarP(&level, "level", "l", 0, "tree level (0 is the root)")
	}
}
