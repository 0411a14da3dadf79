package config_test

import (
	"testing"

	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/pkg/x_quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithValues(t *testing.T) {
	cfg, err := config.New(config.WithValues(map[string]any{
		"http_addr": ":9090",
		"nats":      map[string]any{"port": "4999", "embedded": 1},
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 4999, cfg.NATS.Port)
	assert.True(t, cfg.NATS.Embedded)
}

func TestOptionOrder(t *testing.T) {
	t.Setenv("OPT_HTTP_ADDR", ":7000")

	cfg, err := config.New(
		config.WithValues(map[string]any{"http_addr": ":9090"}),
		config.FromEnv("OPT_"),
	)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}

func TestReplaceEnvVars(t *testing.T) {
	t.Setenv("QTREE_TEST_HOST", "example")
	out := config.ReplaceEnvVars([]byte(`{"url": "nats://${QTREE_TEST_HOST}:4222", "x": "${QTREE_TEST_UNSET}"}`))
	assert.Equal(t, `{"url": "nats://example:4222", "x": ""}`, string(out))
}

func TestOptionsDriveTree(t *testing.T) {
	pixels := [][]int{{10, 20}, {30, 40}}

	cfg := config.Default()
	cfg.Color.Mode = "gray"
	cfg.Color.Tolerance = 2
	tree := x_quad.New(pixels, cfg.Options()...)
	assert.Equal(t, 25, tree.Root().Color())

	_, count := tree.FindMatching(tree.Root(), 22, 1)
	assert.Equal(t, 1, count)
	_, count = tree.FindMatching(tree.Root(), 15, 1)
	assert.Equal(t, 0, count)

	cfg.Strict = true
	_, err := x_quad.New(nil, cfg.Options()...).Pixels(partial(t), 1)
	assert.ErrorIs(t, err, x_quad.ErrPartialNode)
}

func partial(t *testing.T) *x_quad.Node {
	root := x_quad.NewNode(0, 0, 2, 0)
	require.NoError(t, root.SetChild(x_quad.NewNode(0, 0, 1, 1), x_quad.TopLeft))
	return root
}
