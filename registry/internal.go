// file: qtree/registry/internal.go
package registry

import (
	"sort"
	"time"

	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/pkg/x_quad"
)

// Register adds or replaces the tree stored under name.
func (r *Registry) Register(name string, tree *x_quad.Tree) error {
	if name == "" {
		return ErrInvalidName
	}
	if tree == nil {
		return ErrNilTree
	}

	nodes := tree.Count()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.trees[name] = &Entry{Name: name, Tree: tree, Nodes: nodes, CreatedAt: now, LastUsed: now}
	r.notifyWatchers(Event{Type: EventRegistered, Name: name, Size: tree.Size()})
	return nil
}

func (r *Registry) Get(name string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.trees[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.LastUsed = time.Now()
	return *e, nil
}

func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.trees[name]
	if !ok {
		return ErrNotFound
	}
	delete(r.trees, name)
	r.notifyWatchers(Event{Type: EventRemoved, Name: name, Size: e.Tree.Size()})
	return nil
}

// List returns the registered trees sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Info, 0, len(r.trees))
	for _, e := range r.trees {
		list = append(list, Info{
			Name:      e.Name,
			Size:      e.Tree.Size(),
			Depth:     e.Tree.Depth(),
			Nodes:     e.Nodes,
			CreatedAt: e.CreatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trees)
}

func (r *Registry) AddWatcher(w Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers[w] = struct{}{}
}

func (r *Registry) RemoveWatcher(w Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watchers, w)
}

// notifyWatchers must be called with r.mu held.
func (r *Registry) notifyWatchers(e Event) {
	for w := range r.watchers {
		go func(w Watcher) {
			defer func() {
				if err := recover(); err != nil {
					x_log.Warn().Interface("panic", err).Str("tree", e.Name).Msg("watcher panic, removing")
					r.RemoveWatcher(w)
				}
			}()
			w.Notify(e)
		}(w)
	}
}

func (r *Registry) startJanitor() {
	r.once.Do(func() {
		ticker := time.NewTicker(max(r.ttl/2, minPurgeInterval))
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					r.purgeExpired()
				case <-r.stopPurge:
					return
				}
			}
		}()
	})
}

func (r *Registry) purgeExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for name, e := range r.trees {
		if now.Sub(e.LastUsed) > r.ttl {
			delete(r.trees, name)
			x_log.Info().Str("tree", name).Msg("evicted idle tree")
			r.notifyWatchers(Event{Type: EventExpired, Name: name, Size: e.Tree.Size()})
		}
	}
}

func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.stopPurge) })
}
