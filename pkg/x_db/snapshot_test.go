package x_db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/pkg/x_quad"
)

func openTemp(t *testing.T) *DAO {
	t.Helper()
	dao, err := New(Config{
		Type:     DbSqlite,
		DSN:      filepath.Join(t.TempDir(), "qtree.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dao.Close() })
	return dao
}

func grid(n int) [][]int {
	pixels := make([][]int, n)
	for y := range pixels {
		pixels[y] = make([]int, n)
		for x := range pixels[y] {
			pixels[y][x] = y*n + x
		}
	}
	return pixels
}

func TestSaveAndLoadGrid(t *testing.T) {
	dao := openTemp(t)
	ctx := context.Background()
	pixels := grid(8)
	tree := x_quad.New(pixels, x_quad.WithAverage(x_color.AverageGray))

	snap, err := dao.SaveTree(ctx, "g8", pixels, tree)
	require.NoError(t, err)
	assert.NotZero(t, snap.ID)
	assert.Equal(t, 8, snap.Size)
	assert.Equal(t, 3, snap.Depth)
	assert.Equal(t, 85, snap.Nodes)

	got, err := dao.LoadGrid(ctx, "g8")
	require.NoError(t, err)
	assert.Equal(t, pixels, got)
}

func TestNodesAtDepthMatchesPixels(t *testing.T) {
	dao := openTemp(t)
	ctx := context.Background()
	pixels := grid(8)
	tree := x_quad.New(pixels, x_quad.WithAverage(x_color.AverageGray))
	_, err := dao.SaveTree(ctx, "g8", pixels, tree)
	require.NoError(t, err)

	for depth := 0; depth <= 4; depth++ {
		want, err := tree.Pixels(tree.Root(), depth)
		require.NoError(t, err)

		rows, err := dao.NodesAtDepth(ctx, "g8", depth)
		require.NoError(t, err)
		require.Len(t, rows, len(want))
		for i, n := range want {
			assert.Equal(t, n.X(), rows[i].X)
			assert.Equal(t, n.Y(), rows[i].Y)
			assert.Equal(t, n.Size(), rows[i].Size)
			assert.Equal(t, n.Color(), rows[i].Color)
			assert.Equal(t, n.IsLeaf(), rows[i].Leaf)
		}
	}
}

func TestSaveReplacesAndDelete(t *testing.T) {
	dao := openTemp(t)
	ctx := context.Background()

	_, err := dao.SaveTree(ctx, "img", grid(4), x_quad.New(grid(4)))
	require.NoError(t, err)
	_, err = dao.SaveTree(ctx, "img", grid(2), x_quad.New(grid(2)))
	require.NoError(t, err)
	_, err = dao.SaveTree(ctx, "a", grid(1), x_quad.New(grid(1)))
	require.NoError(t, err)

	list, err := dao.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "img", list[1].Name)
	assert.Equal(t, 2, list[1].Size)
	assert.Nil(t, list[1].Pixels)

	var count int64
	require.NoError(t, dao.DB().Model(&NodeRow{}).Count(&count).Error)
	assert.Equal(t, int64(5+1), count)

	require.NoError(t, dao.Delete(ctx, "img"))
	assert.ErrorIs(t, dao.Delete(ctx, "img"), ErrNotFound)

	require.NoError(t, dao.DB().Model(&NodeRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNotFound(t *testing.T) {
	dao := openTemp(t)
	ctx := context.Background()

	_, err := dao.LoadGrid(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = dao.NodesAtDepth(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigDialector(t *testing.T) {
	_, err := Config{Type: DbPostgres}.dialector()
	assert.ErrorIs(t, err, ErrConfig)
	_, err = Config{Type: "mysql", DSN: "x"}.dialector()
	assert.ErrorIs(t, err, ErrConfig)

	d, err := Config{Type: DbPostgres, DSN: "host=localhost dbname=qtree"}.dialector()
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = DefaultConfig().dialector()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "", pathKey(nil))
	assert.Equal(t, "031", pathKey([]int{0, 3, 1}))
}
