// file: qtree/pkg/x_db/model.go
package x_db

import "time"

// Snapshot is a stored source grid. Pixels hold the zstd-compressed JSON rows.
type Snapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Size      int       `json:"size"`
	Depth     int       `json:"depth"`
	Nodes     int       `json:"nodes"`
	Pixels    []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeRow is one quadtree node of a snapshot. Path holds the quadrant
// indexes from the root, so rows of one depth sorted by Path follow the
// same order as a level listing.
type NodeRow struct {
	ID         uint   `gorm:"primaryKey"`
	SnapshotID uint   `gorm:"index:idx_node_depth,priority:1;not null"`
	Depth      int    `gorm:"index:idx_node_depth,priority:2"`
	Path       string `gorm:"size:64"`
	X          int
	Y          int
	Size       int
	Color      int
	Leaf       bool
}
