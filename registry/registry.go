// file: qtree/registry/registry.go
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/rskv-p/qtree/pkg/x_quad"
)

var (
	ErrNotFound    = errors.New("registry: tree not found")
	ErrInvalidName = errors.New("registry: tree name is required")
	ErrNilTree     = errors.New("registry: tree is nil")
)

var _ IRegistry = (*Registry)(nil)

type IRegistry interface {
	Register(name string, tree *x_quad.Tree) error
	Get(name string) (Entry, error)
	Remove(name string) error
	List() []Info
	Len() int

	AddWatcher(Watcher)
	RemoveWatcher(Watcher)

	Close()
}

type EventType string

const (
	EventRegistered EventType = "registered"
	EventRemoved    EventType = "removed"
	EventExpired    EventType = "expired"
)

// Event describes a change of the registered tree set.
type Event struct {
	Type EventType `json:"type"`
	Name string    `json:"name"`
	Size int       `json:"size"`
}

type Watcher interface {
	Notify(Event)
}

// Entry is a registered tree. The tree itself is read-only once built.
type Entry struct {
	Name      string
	Tree      *x_quad.Tree
	Nodes     int
	CreatedAt time.Time
	LastUsed  time.Time
}

// Info is the listing view of an entry.
type Info struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	Depth     int       `json:"depth"`
	Nodes     int       `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
}

const minPurgeInterval = time.Millisecond

type Option func(*Registry)

// WithTTL evicts trees not read for d. Zero disables eviction.
// The janitor never ticks faster than minPurgeInterval.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) {
		r.ttl = d
	}
}

type Registry struct {
	mu        sync.RWMutex
	trees     map[string]*Entry
	watchers  map[Watcher]struct{}
	ttl       time.Duration
	stopPurge chan struct{}
	once      sync.Once
	closeOnce sync.Once
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		trees:     make(map[string]*Entry),
		watchers:  make(map[Watcher]struct{}),
		stopPurge: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ttl > 0 {
		r.startJanitor()
	}
	return r
}
