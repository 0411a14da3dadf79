package x_quad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeContains(t *testing.T) {
	n := NewNode(2, 4, 2, 0)

	assert.True(t, n.Contains(2, 4))
	assert.True(t, n.Contains(3, 5))
	assert.False(t, n.Contains(4, 4), "far x edge is outside")
	assert.False(t, n.Contains(2, 6), "far y edge is outside")
	assert.False(t, n.Contains(1, 4))
	assert.False(t, n.Contains(2, 3))
}

func TestNodeChildIndex(t *testing.T) {
	n := NewNode(0, 0, 2, 0)

	for _, i := range []int{-1, 4, 100} {
		_, err := n.Child(i)
		assert.ErrorIs(t, err, ErrChildIndex)
		assert.ErrorIs(t, n.SetChild(NewNode(0, 0, 1, 0), i), ErrChildIndex)
	}

	c, err := n.Child(TopLeft)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.True(t, n.IsLeaf())
}

func TestNodeSetChild(t *testing.T) {
	parent := NewNode(4, 4, 4, 0)

	child := NewNode(6, 4, 2, 7)
	require.NoError(t, parent.SetChild(child, TopRight))
	assert.False(t, parent.IsLeaf())
	assert.Same(t, parent, child.Parent())
	assert.Equal(t, TopRight, child.Quadrant())
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, []int{TopRight}, child.Path())

	got, err := parent.Child(TopRight)
	require.NoError(t, err)
	assert.Same(t, child, got)

	// wrong quadrant, wrong size, leaf parent
	assert.ErrorIs(t, parent.SetChild(NewNode(6, 4, 2, 0), BottomLeft), ErrChildTiling)
	assert.ErrorIs(t, parent.SetChild(NewNode(4, 4, 4, 0), TopLeft), ErrChildTiling)
	assert.ErrorIs(t, NewNode(0, 0, 1, 0).SetChild(NewNode(0, 0, 0, 0), TopLeft), ErrChildTiling)

	// clearing a slot
	require.NoError(t, parent.SetChild(nil, TopRight))
	assert.True(t, parent.IsLeaf())
}

func TestNodeNavigation(t *testing.T) {
	tree := New(grid(4), WithAverage(avgGray))
	root := tree.Root()

	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, -1, root.Quadrant())
	assert.Empty(t, root.Path())

	leaf := tree.FindNode(root, 2, 3, 2)
	require.NotNil(t, leaf)
	assert.Equal(t, 2, leaf.Depth())
	assert.Equal(t, []int{BottomRight, TopRight}, leaf.Path())
	assert.Same(t, root, leaf.Parent().Parent())
}

func TestNodeString(t *testing.T) {
	assert.Equal(t, "(1,2 size=4 color=9)", NewNode(1, 2, 4, 9).String())
}
