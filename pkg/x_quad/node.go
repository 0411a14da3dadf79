// file:qtree/pkg/x_quad/node.go
package x_quad

import (
	"errors"
	"fmt"
)

//---------------------
// Quadrants
//---------------------

const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight

	NumQuadrants = 4
)

var (
	ErrChildIndex  = errors.New("child index out of bounds")
	ErrChildTiling = errors.New("child does not tile parent quadrant")
	ErrPartialNode = errors.New("internal node has an empty child slot")
)

//---------------------
// Node
//---------------------

// Node is a square region [x, x+size) x [y, y+size) with the average color
// of its pixels. Parent is navigation only; ownership flows root to leaves.
type Node struct {
	x, y     int
	size     int
	color    int
	parent   *Node
	children [NumQuadrants]*Node
}

// NewNode returns a detached node with no children.
func NewNode(x, y, size, color int) *Node {
	return &Node{x: x, y: y, size: size, color: color}
}

func (n *Node) X() int        { return n.x }
func (n *Node) Y() int        { return n.y }
func (n *Node) Size() int     { return n.size }
func (n *Node) Color() int    { return n.color }
func (n *Node) Parent() *Node { return n.parent }

// Contains reports whether (px, py) lies inside the half-open region.
func (n *Node) Contains(px, py int) bool {
	return px >= n.x && px < n.x+n.size &&
		py >= n.y && py < n.y+n.size
}

// IsLeaf reports whether all child slots are empty.
func (n *Node) IsLeaf() bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

// Child returns the child in quadrant i.
func (n *Node) Child(i int) (*Node, error) {
	if i < 0 || i >= NumQuadrants {
		return nil, fmt.Errorf("%w: %d", ErrChildIndex, i)
	}
	return n.children[i], nil
}

// SetChild places child in quadrant i and links its parent. The child must
// cover exactly the i-th quadrant of n. A nil child clears the slot.
func (n *Node) SetChild(child *Node, i int) error {
	if i < 0 || i >= NumQuadrants {
		return fmt.Errorf("%w: %d", ErrChildIndex, i)
	}
	if child == nil {
		n.children[i] = nil
		return nil
	}
	qx, qy, half := n.quadrant(i)
	if n.size < 2 || child.x != qx || child.y != qy || child.size != half {
		return fmt.Errorf("%w: quadrant %d of %s, got %s", ErrChildTiling, i, n, child)
	}
	child.parent = n
	n.children[i] = child
	return nil
}

// quadrant returns the origin and side of quadrant i.
func (n *Node) quadrant(i int) (x, y, size int) {
	half := n.size / 2
	x, y = n.x, n.y
	if i == TopRight || i == BottomRight {
		x += half
	}
	if i == BottomLeft || i == BottomRight {
		y += half
	}
	return x, y, half
}

//---------------------
// Navigation
//---------------------

// Depth returns the number of parent links up to the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Quadrant returns the slot index n occupies in its parent, or -1 for a root.
func (n *Node) Quadrant() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Path returns the quadrant indices from the root down to n.
func (n *Node) Path() []int {
	path := make([]int, n.Depth())
	for c, i := n, len(path)-1; c.parent != nil; c, i = c.parent, i-1 {
		path[i] = c.Quadrant()
	}
	return path
}

func (n *Node) String() string {
	return fmt.Sprintf("(%d,%d size=%d color=%d)", n.x, n.y, n.size, n.color)
}
