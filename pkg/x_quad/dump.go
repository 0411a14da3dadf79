// file:qtree/pkg/x_quad/dump.go
package x_quad

import (
	"fmt"
	"io"
	"strings"
)

//---------------------
// Tree Dump (Debug)
//---------------------

// Dump writes an indented representation of the tree to w.
func (t *Tree) Dump(w io.Writer) {
	t.dump(w, t.root, 0, -1)
	fmt.Fprintln(w)
}

// dump writes a single node (recursive).
func (t *Tree) dump(w io.Writer, n *Node, depth, quadrant int) {
	if n == nil {
		fmt.Fprintln(w, "EMPTY")
		return
	}
	fmt.Fprintf(w, "%s%s %s color=%#06x at (%d,%d) size=%d\n",
		dumpPre(depth), quadrantLabel(quadrant), n.kind(), n.color, n.x, n.y, n.size)
	if n.IsLeaf() {
		return
	}
	for i, c := range n.children {
		if c == nil {
			fmt.Fprintf(w, "%s%s EMPTY\n", dumpPre(depth+1), quadrantLabel(i))
			continue
		}
		t.dump(w, c, depth+1, i)
	}
}

//---------------------
// Labels
//---------------------

func (n *Node) kind() string {
	if n.IsLeaf() {
		return "LEAF"
	}
	return "NODE"
}

func quadrantLabel(i int) string {
	switch i {
	case TopLeft:
		return "TL"
	case TopRight:
		return "TR"
	case BottomLeft:
		return "BL"
	case BottomRight:
		return "BR"
	default:
		return "ROOT"
	}
}

//---------------------
// Indentation Helper
//---------------------

func dumpPre(depth int) string {
	if depth == 0 {
		return "-- "
	}
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString("|__ ")
	return b.String()
}
