package cmd_quad

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"

	"github.com/rskv-p/qtree/cmd/cmd_common"
	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/servs/s_quad/quad_serv"
)

const shellHelp = `commands:
  pixels <level>
  match <color> [level]
  node <level> <x> <y>
  dump
  help
  quit`

// Shell is a line-oriented query loop over one tree.
type Shell struct {
	svc  *quad_serv.Service
	name string
}

func NewShell(svc *quad_serv.Service, name string) *Shell {
	return &Shell{svc: svc, name: name}
}

// Run reads commands from in until EOF or quit. Errors of single commands
// are printed and do not end the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprintf(out, "%s> ", s.name)
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		} else if len(args) > 0 {
			quit, err := s.exec(ctx, args, out)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if quit {
				return nil
			}
		}
		fmt.Fprintf(out, "%s> ", s.name)
	}
	fmt.Fprintln(out)
	return sc.Err()
}

func (s *Shell) exec(ctx context.Context, args []string, out io.Writer) (bool, error) {
	switch args[0] {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
	case "pixels":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: pixels <level>")
		}
		lvl, err := strconv.Atoi(args[1])
		if err != nil {
			return false, err
		}
		nodes, err := s.svc.Pixels(ctx, s.name, lvl)
		if err != nil {
			return false, err
		}
		return false, cmd_common.PrintNodes(out, nodes)
	case "match":
		if len(args) < 2 || len(args) > 3 {
			return false, fmt.Errorf("usage: match <color> [level]")
		}
		color, err := x_color.Parse(args[1])
		if err != nil {
			return false, err
		}
		lvl := 0
		if len(args) == 3 {
			if lvl, err = strconv.Atoi(args[2]); err != nil {
				return false, err
			}
		}
		m, err := s.svc.Match(ctx, s.name, color, lvl)
		if err != nil {
			return false, err
		}
		return false, cmd_common.PrintMatch(out, m)
	case "node":
		if len(args) != 4 {
			return false, fmt.Errorf("usage: node <level> <x> <y>")
		}
		lvl, err := strconv.Atoi(args[1])
		if err != nil {
			return false, err
		}
		x, y, err := point(args[2], args[3])
		if err != nil {
			return false, err
		}
		n, err := s.svc.Locate(ctx, s.name, lvl, x, y)
		if err != nil {
			return false, err
		}
		return false, cmd_common.PrintNode(out, n)
	case "dump":
		tree, err := s.svc.Tree(ctx, s.name)
		if err != nil {
			return false, err
		}
		tree.Dump(out)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return false, nil
}
