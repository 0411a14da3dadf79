package quad_client_test

import (
	"context"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/registry"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
	"github.com/rskv-p/qtree/servs/s_quad/quad_client"
	"github.com/rskv-p/qtree/servs/s_quad/quad_serv"
)

func setup(t *testing.T) *quad_client.Client {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	ns := natsserver.RunServer(&opts)
	t.Cleanup(ns.Shutdown)

	cfg := config.Default()
	cfg.DB.Type = ""
	cfg.Color.Mode = "gray"
	cfg.Color.Tolerance = 5
	cfg.NATS.Prefix = "img.quad"
	svc := quad_serv.New(cfg, nil, nil)
	require.NoError(t, svc.StartBus(ns.ClientURL()))
	t.Cleanup(func() { _ = svc.Stop() })

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return quad_client.New(nc, "img.quad").WithTimeout(3 * time.Second)
}

func TestClientRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	info, err := c.Build(ctx, "remote", [][]int{{10, 20}, {30, 40}})
	require.NoError(t, err)
	assert.Equal(t, 2, info.Size)

	trees, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, "remote", trees[0].Name)

	nodes, err := c.Pixels(ctx, "remote", 1)
	require.NoError(t, err)
	require.Len(t, nodes, 4)
	assert.Equal(t, 10, nodes[0].Color)

	m, err := c.Match(ctx, "remote", 33, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count)
	assert.Equal(t, 30, m.Nodes[0].Color)

	n, err := c.Locate(ctx, "remote", 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 25, n.Color)

	require.NoError(t, c.Remove(ctx, "remote"))
}

func TestClientErrors(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	_, err := c.Pixels(ctx, "ghost", 0)
	assert.ErrorIs(t, err, quad_api.ErrTreeNotFound)

	_, err = c.Build(ctx, "bad", [][]int{{1, 2}, {3}})
	assert.ErrorIs(t, err, quad_api.ErrBadRequest)

	_, err = c.Build(ctx, "ok", [][]int{{1}})
	require.NoError(t, err)

	_, err = c.Pixels(ctx, "ok", -1)
	assert.ErrorIs(t, err, quad_api.ErrInvalidLevel)

	_, err = c.Locate(ctx, "ok", 0, 3, 3)
	assert.ErrorIs(t, err, quad_api.ErrNoNode)

	assert.ErrorIs(t, c.Remove(ctx, "ghost"), quad_api.ErrTreeNotFound)
}

func TestClientWatch(t *testing.T) {
	c := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []registry.Event
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func(e registry.Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})
	}()

	// the subscription is live once a build event is seen
	require.Eventually(t, func() bool {
		_, _ = c.Build(context.Background(), "w", [][]int{{1}})
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, 3*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, registry.EventRegistered, events[0].Type)
	assert.Equal(t, "w", events[0].Name)
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
