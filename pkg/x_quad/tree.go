// file:qtree/pkg/x_quad/tree.go
package x_quad

import (
	"fmt"
	"math/bits"
)

//---------------------
// Tree
//---------------------

// Tree is a perfect quadtree over a square pixel grid. It is built once and
// only read afterwards, so concurrent queries need no locking.
type Tree struct {
	root *Node
	size int
	opts options
}

// New builds the tree for pixels, indexed pixels[y][x]. The grid must be
// square with a power-of-two side; an empty grid yields a tree without root.
func New(pixels [][]int, opts ...Option) *Tree {
	t := &Tree{
		size: len(pixels),
		opts: defaultOptions(),
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	if t.size > 0 {
		t.root = t.build(pixels, 0, 0, t.size, nil)
	}
	return t
}

// build creates the subtree for the window at (x, y). Internal colors are
// averaged over the raw window, not over the children.
func (t *Tree) build(pixels [][]int, x, y, size int, parent *Node) *Node {
	n := &Node{x: x, y: y, size: size, parent: parent}
	if size == 1 {
		n.color = pixels[y][x]
		return n
	}
	for i := 0; i < NumQuadrants; i++ {
		cx, cy, half := n.quadrant(i)
		n.children[i] = t.build(pixels, cx, cy, half, n)
	}
	n.color = t.opts.average(pixels, x, y, size)
	return n
}

func (t *Tree) Root() *Node { return t.root }

// Size returns the side length of the root region.
func (t *Tree) Size() int { return t.size }

// Depth returns the level of the leaves below the root, or -1 when empty.
func (t *Tree) Depth() int {
	if t.size == 0 {
		return -1
	}
	return bits.Len(uint(t.size)) - 1
}

//---------------------
// Level Listing
//---------------------

// Pixels returns the nodes exactly level steps below n, in quadrant
// pre-order. A leaf above the requested level contributes nothing.
//
// A malformed child (bad index or an empty slot in an internal node) is
// logged and skipped unless the tree is strict, in which case the listing
// stops with that error.
func (t *Tree) Pixels(n *Node, level int) ([]*Node, error) {
	if n == nil {
		return nil, nil
	}
	if level == 0 {
		return []*Node{n}, nil
	}
	if n.IsLeaf() {
		return nil, nil
	}

	var out []*Node
	for i := 0; i < NumQuadrants; i++ {
		child, err := n.Child(i)
		if err == nil && child == nil {
			err = fmt.Errorf("%w: quadrant %d of %s", ErrPartialNode, i, n)
		}
		if err != nil {
			if t.opts.strict {
				return nil, err
			}
			t.opts.log.Warn().Err(err).Int("depth", level).Msg("subtree skipped")
			continue
		}
		sub, err := t.Pixels(child, level-1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

//---------------------
// Color Search
//---------------------

// FindMatching returns the nodes level steps below n whose color is similar
// to color, together with their count. A leaf reached early is tested itself.
func (t *Tree) FindMatching(n *Node, color, level int) ([]*Node, int) {
	if n == nil {
		return nil, 0
	}
	if level == 0 || n.IsLeaf() {
		if t.opts.similar(n.color, color) {
			return []*Node{n}, 1
		}
		return nil, 0
	}

	var (
		nodes []*Node
		count int
	)
	for _, child := range n.children {
		sub, k := t.FindMatching(child, color, level-1)
		nodes = mergeLists(nodes, sub)
		count += k
	}
	return nodes, count
}

// mergeLists concatenates a and b, dropping nil entries.
func mergeLists(a, b []*Node) []*Node {
	if len(b) == 0 {
		return a
	}
	out := a
	for _, n := range b {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

//---------------------
// Point Location
//---------------------

// FindNode returns the node level steps below n that covers (px, py), or the
// covering leaf if the tree ends first. It returns nil when nothing covers it.
func (t *Tree) FindNode(n *Node, level, px, py int) *Node {
	if n == nil || level < 0 {
		return nil
	}
	if level == 0 || n.IsLeaf() {
		if n.Contains(px, py) {
			return n
		}
		return nil
	}
	for _, child := range n.children {
		if child != nil && child.Contains(px, py) {
			return t.FindNode(child, level-1, px, py)
		}
	}
	return nil
}

//---------------------
// Traversal
//---------------------

// Walk visits nodes in quadrant pre-order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	walk(t.root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree.
func (t *Tree) Count() int {
	total := 0
	t.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}
