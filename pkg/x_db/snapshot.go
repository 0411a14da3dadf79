// file: qtree/pkg/x_db/snapshot.go
package x_db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gorm.io/gorm"

	"github.com/rskv-p/qtree/pkg/x_quad"
)

const nodeBatch = 500

var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	zdec, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// SaveTree stores the grid and every node of tree under name, replacing
// any snapshot with the same name.
func (d *DAO) SaveTree(ctx context.Context, name string, pixels [][]int, tree *x_quad.Tree) (*Snapshot, error) {
	raw, err := json.Marshal(pixels)
	if err != nil {
		return nil, fmt.Errorf("encode pixels: %w", err)
	}

	snap := &Snapshot{
		Name:   name,
		Size:   tree.Size(),
		Depth:  tree.Depth(),
		Nodes:  tree.Count(),
		Pixels: zenc.EncodeAll(raw, nil),
	}

	rows := make([]NodeRow, 0, snap.Nodes)
	tree.Walk(func(n *x_quad.Node) bool {
		rows = append(rows, NodeRow{
			Depth: n.Depth(),
			Path:  pathKey(n.Path()),
			X:     n.X(),
			Y:     n.Y(),
			Size:  n.Size(),
			Color: n.Color(),
			Leaf:  n.IsLeaf(),
		})
		return true
	})

	err = d.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByName(tx, name); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := tx.Create(snap).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].SnapshotID = snap.ID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, nodeBatch).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save snapshot %s: %w", name, err)
	}

	d.log.Debug().Str("tree", name).Int("nodes", len(rows)).Int("bytes", len(snap.Pixels)).Msg("snapshot saved")
	return snap, nil
}

// LoadGrid returns the stored source grid.
func (d *DAO) LoadGrid(ctx context.Context, name string) ([][]int, error) {
	var snap Snapshot
	if err := d.ctx(ctx).Where("name = ?", name).First(&snap).Error; err != nil {
		return nil, notFound(name, err)
	}

	raw, err := zdec.DecodeAll(snap.Pixels, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %s: %w", name, err)
	}
	var pixels [][]int
	if err := json.Unmarshal(raw, &pixels); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return pixels, nil
}

// NodesAtDepth lists the stored nodes of one depth in quadrant order.
func (d *DAO) NodesAtDepth(ctx context.Context, name string, depth int) ([]NodeRow, error) {
	var snap Snapshot
	if err := d.ctx(ctx).Select("id").Where("name = ?", name).First(&snap).Error; err != nil {
		return nil, notFound(name, err)
	}

	var rows []NodeRow
	err := d.ctx(ctx).
		Where("snapshot_id = ? AND depth = ?", snap.ID, depth).
		Order("path").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list nodes %s: %w", name, err)
	}
	return rows, nil
}

// List returns all snapshots without their pixel data, sorted by name.
func (d *DAO) List(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	err := d.ctx(ctx).
		Select("id", "name", "size", "depth", "nodes", "created_at", "updated_at").
		Order("name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot and its nodes.
func (d *DAO) Delete(ctx context.Context, name string) error {
	return d.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteByName(tx, name)
	})
}

func deleteByName(tx *gorm.DB, name string) error {
	var snap Snapshot
	if err := tx.Select("id").Where("name = ?", name).First(&snap).Error; err != nil {
		return notFound(name, err)
	}
	if err := tx.Where("snapshot_id = ?", snap.ID).Delete(&NodeRow{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Snapshot{}, snap.ID).Error
}

func notFound(name string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

func pathKey(path []int) string {
	var b strings.Builder
	for _, q := range path {
		b.WriteByte(byte('0' + q))
	}
	return b.String()
}
