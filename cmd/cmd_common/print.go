package cmd_common

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintNodes writes one node per line, or JSON with --json.
func PrintNodes(w io.Writer, nodes []quad_api.NodeInfo) error {
	if JSON {
		return printJSON(w, nodes)
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-6s %-6s %-6s %-9s %s", "X", "Y", "SIZE", "COLOR", "PATH")))
	for _, n := range nodes {
		fmt.Fprintf(w, "%-6d %-6d %-6d %-9s %v\n", n.X, n.Y, n.Size, n.Hex, n.Path)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d node(s)", len(nodes))))
	return nil
}

// PrintMatch writes a match result.
func PrintMatch(w io.Writer, m quad_api.MatchResponse) error {
	if JSON {
		return printJSON(w, m)
	}
	return PrintNodes(w, m.Nodes)
}

// PrintNode writes a single located node.
func PrintNode(w io.Writer, n quad_api.NodeInfo) error {
	if JSON {
		return printJSON(w, n)
	}
	kind := "node"
	if n.Leaf {
		kind = "leaf"
	}
	_, err := fmt.Fprintf(w, "%s at (%d,%d) size=%d depth=%d color=%s (%d)\n",
		kind, n.X, n.Y, n.Size, n.Depth, n.Hex, n.Color)
	return err
}

// PrintTrees writes a tree listing.
func PrintTrees(w io.Writer, trees []quad_api.TreeInfo) error {
	if JSON {
		return printJSON(w, trees)
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-20s %-6s %-6s %-8s %s", "NAME", "SIZE", "DEPTH", "NODES", "STATE")))
	for _, t := range trees {
		state := "stored"
		switch {
		case t.Loaded && t.Stored:
			state = "loaded+stored"
		case t.Loaded:
			state = "loaded"
		}
		fmt.Fprintf(w, "%-20s %-6d %-6d %-8d %s\n", t.Name, t.Size, t.Depth, t.Nodes, state)
	}
	return nil
}
