// servs/s_quad/quad_serv/service.go
package quad_serv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/pkg/x_db"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/pkg/x_quad"
	"github.com/rskv-p/qtree/registry"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

var _ quad_api.IQuad = (*Service)(nil)

// Service owns the tree registry and the optional snapshot store, and
// answers queries locally, over REST and over the bus.
type Service struct {
	cfg *config.Config
	reg *registry.Registry
	dao *x_db.DAO
	log x_log.Logger

	ns     *server.Server
	nc     *nats.Conn
	micro  micro.Service
	events *busWatcher
}

// New creates a service. dao may be nil to keep trees in memory only.
// A nil reg gets a registry evicting idle trees after cfg.RegistryTTL.
func New(cfg *config.Config, reg *registry.Registry, dao *x_db.DAO) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if reg == nil {
		reg = registry.NewRegistry(registry.WithTTL(cfg.RegistryTTL))
	}
	return &Service{
		cfg: cfg,
		reg: reg,
		dao: dao,
		log: x_log.New("quad"),
	}
}

// Registry exposes the tree registry, e.g. for websocket watchers.
func (s *Service) Registry() *registry.Registry { return s.reg }

//---------------------
// Operations
//---------------------

// Build validates the grid, builds its tree and registers it under name.
// With a store configured the grid is persisted first and a failed save
// leaves the registry untouched.
func (s *Service) Build(ctx context.Context, name string, pixels [][]int) (quad_api.TreeInfo, error) {
	if name == "" {
		return quad_api.TreeInfo{}, registry.ErrInvalidName
	}
	if err := codec.Grid(pixels).Validate(); err != nil {
		return quad_api.TreeInfo{}, err
	}

	tree := s.newTree(pixels)
	info := treeInfo(name, tree)
	if s.dao != nil {
		if _, err := s.dao.SaveTree(ctx, name, pixels, tree); err != nil {
			return quad_api.TreeInfo{}, err
		}
		info.Stored = true
	}

	// a failed save leaves the registry untouched
	if err := s.reg.Register(name, tree); err != nil {
		return quad_api.TreeInfo{}, err
	}

	s.log.Info().Str("tree", name).Int("size", tree.Size()).Int("nodes", info.Nodes).Msg("tree built")
	return info, nil
}

// Load makes a stored tree resident.
func (s *Service) Load(ctx context.Context, name string) (quad_api.TreeInfo, error) {
	tree, err := s.tree(ctx, name)
	if err != nil {
		return quad_api.TreeInfo{}, err
	}
	info := treeInfo(name, tree)
	info.Stored = s.dao != nil
	return info, nil
}

// Pixels lists the nodes at level. Trees that are only stored are listed
// straight from the store.
func (s *Service) Pixels(ctx context.Context, name string, level int) ([]quad_api.NodeInfo, error) {
	if level < 0 {
		return nil, quad_api.ErrInvalidLevel
	}

	if e, err := s.reg.Get(name); err == nil {
		nodes, err := e.Tree.Pixels(e.Tree.Root(), level)
		if err != nil {
			return nil, err
		}
		return nodeInfos(nodes), nil
	}

	if s.dao == nil {
		return nil, fmt.Errorf("%w: %s", quad_api.ErrTreeNotFound, name)
	}
	rows, err := s.dao.NodesAtDepth(ctx, name, level)
	if err != nil {
		return nil, s.storeErr(name, err)
	}
	out := make([]quad_api.NodeInfo, len(rows))
	for i, r := range rows {
		out[i] = rowInfo(r)
	}
	return out, nil
}

// Match returns the nodes at level whose color is similar to color.
func (s *Service) Match(ctx context.Context, name string, color, level int) (quad_api.MatchResponse, error) {
	if level < 0 {
		return quad_api.MatchResponse{}, quad_api.ErrInvalidLevel
	}
	tree, err := s.tree(ctx, name)
	if err != nil {
		return quad_api.MatchResponse{}, err
	}
	nodes, count := tree.FindMatching(tree.Root(), color, level)
	return quad_api.MatchResponse{Nodes: nodeInfos(nodes), Count: count}, nil
}

// Locate returns the node at level containing (x, y).
func (s *Service) Locate(ctx context.Context, name string, level, x, y int) (quad_api.NodeInfo, error) {
	tree, err := s.tree(ctx, name)
	if err != nil {
		return quad_api.NodeInfo{}, err
	}
	n := tree.FindNode(tree.Root(), level, x, y)
	if n == nil {
		return quad_api.NodeInfo{}, fmt.Errorf("%w: (%d,%d) level %d", quad_api.ErrNoNode, x, y, level)
	}
	return nodeInfo(n), nil
}

// List merges resident and stored trees, sorted by name.
func (s *Service) List(ctx context.Context) ([]quad_api.TreeInfo, error) {
	byName := make(map[string]quad_api.TreeInfo)
	for _, e := range s.reg.List() {
		byName[e.Name] = quad_api.TreeInfo{
			Name:   e.Name,
			Size:   e.Size,
			Depth:  e.Depth,
			Nodes:  e.Nodes,
			Loaded: true,
		}
	}

	if s.dao != nil {
		snaps, err := s.dao.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, snap := range snaps {
			info, ok := byName[snap.Name]
			if !ok {
				info = quad_api.TreeInfo{Name: snap.Name, Size: snap.Size, Depth: snap.Depth, Nodes: snap.Nodes}
			}
			info.Stored = true
			byName[snap.Name] = info
		}
	}

	out := make([]quad_api.TreeInfo, 0, len(byName))
	for _, info := range byName {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove drops a tree from memory and from the store.
func (s *Service) Remove(ctx context.Context, name string) error {
	found := s.reg.Remove(name) == nil
	if s.dao != nil {
		err := s.dao.Delete(ctx, name)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, x_db.ErrNotFound):
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", quad_api.ErrTreeNotFound, name)
	}
	s.log.Info().Str("tree", name).Msg("tree removed")
	return nil
}

// Tree returns the resident tree, loading it from the store if needed.
func (s *Service) Tree(ctx context.Context, name string) (*x_quad.Tree, error) {
	return s.tree(ctx, name)
}

//---------------------
// Internals
//---------------------

func (s *Service) newTree(pixels [][]int) *x_quad.Tree {
	opts := append(s.cfg.Options(), x_quad.WithLogger(s.log))
	return x_quad.New(pixels, opts...)
}

func (s *Service) tree(ctx context.Context, name string) (*x_quad.Tree, error) {
	if e, err := s.reg.Get(name); err == nil {
		return e.Tree, nil
	}
	if s.dao == nil {
		return nil, fmt.Errorf("%w: %s", quad_api.ErrTreeNotFound, name)
	}

	pixels, err := s.dao.LoadGrid(ctx, name)
	if err != nil {
		return nil, s.storeErr(name, err)
	}
	tree := s.newTree(pixels)
	if err := s.reg.Register(name, tree); err != nil {
		return nil, err
	}
	s.log.Debug().Str("tree", name).Msg("tree loaded from store")
	return tree, nil
}

func (s *Service) storeErr(name string, err error) error {
	if errors.Is(err, x_db.ErrNotFound) {
		return fmt.Errorf("%w: %s", quad_api.ErrTreeNotFound, name)
	}
	return err
}

func treeInfo(name string, t *x_quad.Tree) quad_api.TreeInfo {
	return quad_api.TreeInfo{
		Name:   name,
		Size:   t.Size(),
		Depth:  t.Depth(),
		Nodes:  t.Count(),
		Loaded: true,
	}
}

func nodeInfo(n *x_quad.Node) quad_api.NodeInfo {
	return quad_api.NodeInfo{
		X:     n.X(),
		Y:     n.Y(),
		Size:  n.Size(),
		Color: n.Color(),
		Hex:   x_color.Hex(n.Color()),
		Depth: n.Depth(),
		Path:  n.Path(),
		Leaf:  n.IsLeaf(),
	}
}

func nodeInfos(nodes []*x_quad.Node) []quad_api.NodeInfo {
	out := make([]quad_api.NodeInfo, len(nodes))
	for i, n := range nodes {
		out[i] = nodeInfo(n)
	}
	return out
}

func rowInfo(r x_db.NodeRow) quad_api.NodeInfo {
	path := make([]int, len(r.Path))
	for i := range r.Path {
		path[i] = int(r.Path[i] - '0')
	}
	return quad_api.NodeInfo{
		X:     r.X,
		Y:     r.Y,
		Size:  r.Size,
		Color: r.Color,
		Hex:   x_color.Hex(r.Color),
		Depth: r.Depth,
		Path:  path,
		Leaf:  r.Leaf,
	}
}
