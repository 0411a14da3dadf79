// servs/s_quad/quad_api/api.go
package quad_api

import (
	"context"
	"errors"
)

// IQuad is implemented by the local service and by the bus client.
type IQuad interface {
	Build(ctx context.Context, name string, pixels [][]int) (TreeInfo, error)
	Pixels(ctx context.Context, name string, level int) ([]NodeInfo, error)
	Match(ctx context.Context, name string, color, level int) (MatchResponse, error)
	Locate(ctx context.Context, name string, level, x, y int) (NodeInfo, error)
	List(ctx context.Context) ([]TreeInfo, error)
	Remove(ctx context.Context, name string) error
}

var (
	ErrTreeNotFound = errors.New("tree not found")
	ErrNoNode       = errors.New("point is outside the tree")
	ErrInvalidLevel = errors.New("level must not be negative")
	ErrBadRequest   = errors.New("bad request")
)

const (
	SubjectBuild  = "build"
	SubjectPixels = "pixels"
	SubjectMatch  = "match"
	SubjectNode   = "node"
	SubjectList   = "list"
	SubjectRemove = "remove"
	SubjectEvents = "events"
)

// Subject joins the configured prefix and an endpoint name.
func Subject(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// NodeInfo is the wire form of a quadtree node.
type NodeInfo struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Size  int    `json:"size"`
	Color int    `json:"color"`
	Hex   string `json:"hex"`
	Depth int    `json:"depth"`
	Path  []int  `json:"path"`
	Leaf  bool   `json:"leaf"`
}

type TreeInfo struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Depth  int    `json:"depth"`
	Nodes  int    `json:"nodes"`
	Loaded bool   `json:"loaded"` // held in memory
	Stored bool   `json:"stored"` // persisted snapshot exists
}

type BuildRequest struct {
	Name   string  `json:"name"`
	Pixels [][]int `json:"pixels"`
}
type BuildResponse struct {
	Tree TreeInfo `json:"tree"`
}

type PixelsRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}
type PixelsResponse struct {
	Nodes []NodeInfo `json:"nodes"`
}

type MatchRequest struct {
	Name  string `json:"name"`
	Color int    `json:"color"`
	Level int    `json:"level"`
}
type MatchResponse struct {
	Nodes []NodeInfo `json:"nodes"`
	Count int        `json:"count"`
}

type NodeRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}
type NodeResponse struct {
	Node NodeInfo `json:"node"`
}

type ListRequest struct{}
type ListResponse struct {
	Trees []TreeInfo `json:"trees"`
}

type RemoveRequest struct {
	Name string `json:"name"`
}
type RemoveResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the JSON error body of the REST and websocket APIs.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	ReqID string `json:"req_id,omitempty"`
}
