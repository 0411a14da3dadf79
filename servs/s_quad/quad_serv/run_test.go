package quad_serv

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskv-p/qtree/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = freeAddr(t)
	cfg.NATS.Embedded = true
	cfg.NATS.Port = -1
	cfg.DB.Type = "sqlite"
	cfg.DB.DSN = filepath.Join(t.TempDir(), "run.db")
	cfg.DB.LogLevel = "silent"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	health := fmt.Sprintf("http://%s/health", cfg.HTTPAddr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(health)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Type = "oracle"
	assert.ErrorIs(t, Run(context.Background(), cfg), config.ErrInvalidConfig)
}

func TestOpenStoreDisabled(t *testing.T) {
	dao, err := OpenStore(testConfig())
	assert.NoError(t, err)
	assert.Nil(t, dao)
}
