// file: qtree/registry/internal_test.go
package registry

import (
	"testing"
	"time"

	"github.com/rskv-p/qtree/pkg/x_quad"
	"github.com/stretchr/testify/assert"
)

type panicWatcher struct{}

func (p *panicWatcher) Notify(Event) {
	panic("boom")
}

func TestInternal_RegisterValidation(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	assert.ErrorIs(t, r.Register("", x_quad.New([][]int{{1}})), ErrInvalidName)
	assert.ErrorIs(t, r.Register("x", nil), ErrNilTree)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}

func TestInternal_WatcherPanicRemoved(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	r.AddWatcher(&panicWatcher{})
	assert.NoError(t, r.Register("x", x_quad.New([][]int{{1}})))

	assert.Eventually(t, func() bool {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return len(r.watchers) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestInternal_PurgeKeepsRecent(t *testing.T) {
	r := &Registry{
		trees:     make(map[string]*Entry),
		watchers:  make(map[Watcher]struct{}),
		ttl:       time.Minute,
		stopPurge: make(chan struct{}),
	}
	old := time.Now().Add(-2 * time.Minute)
	r.trees["old"] = &Entry{Name: "old", Tree: x_quad.New([][]int{{1}}), LastUsed: old}
	assert.NoError(t, r.Register("fresh", x_quad.New([][]int{{2}})))

	r.purgeExpired()

	assert.Equal(t, 1, r.Len())
	_, err := r.Get("fresh")
	assert.NoError(t, err)

	r.Close()
	r.Close()
}

func TestInternal_TinyTTL(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r = NewRegistry(WithTTL(time.Nanosecond))
	})
	defer r.Close()

	assert.NoError(t, r.Register("x", x_quad.New([][]int{{1}})))
	assert.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestInternal_NodesCountedOnRegister(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	assert.NoError(t, r.Register("x", x_quad.New([][]int{{1, 2}, {3, 4}})))

	r.mu.Lock()
	assert.Equal(t, 5, r.trees["x"].Nodes)
	r.trees["x"].Nodes = 99
	r.mu.Unlock()

	// List reports the cached count, it does not walk the tree
	assert.Equal(t, 99, r.List()[0].Nodes)

	e, err := r.Get("x")
	assert.NoError(t, err)
	assert.Equal(t, 99, e.Nodes)
}
