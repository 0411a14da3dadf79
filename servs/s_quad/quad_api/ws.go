// servs/s_quad/quad_api/ws.go
package quad_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/registry"
)

const wsWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSRequest is a query frame sent by a websocket client. Op is one of
// pixels, match, node or list.
type WSRequest struct {
	ID    string `json:"id,omitempty"`
	Op    string `json:"op"`
	Name  string `json:"name,omitempty"`
	Level int    `json:"level,omitempty"`
	Color int    `json:"color,omitempty"`
	X     int    `json:"x,omitempty"`
	Y     int    `json:"y,omitempty"`
}

// WSResponse answers a WSRequest, or carries a registry event when Op is "event".
type WSResponse struct {
	ID    string          `json:"id,omitempty"`
	Op    string          `json:"op"`
	Nodes []NodeInfo      `json:"nodes,omitempty"`
	Count *int            `json:"count,omitempty"`
	Node  *NodeInfo       `json:"node,omitempty"`
	Trees []TreeInfo      `json:"trees,omitempty"`
	Event *registry.Event `json:"event,omitempty"`
	Error string          `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(v)
}

// Hub stores all active websocket connections.
type Hub struct {
	q       IQuad
	clients map[*wsClient]struct{}
	mu      sync.Mutex
}

func NewHub(q IQuad) *Hub {
	return &Hub{
		q:       q,
		clients: make(map[*wsClient]struct{}),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify pushes a registry event to every connected client.
func (h *Hub) Notify(e registry.Event) {
	msg := WSResponse{Op: "event", Event: &e}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			x_log.Debug().Err(err).Msg("ws push failed")
		}
	}
}

// HandleWS upgrades the connection and serves query frames until the client leaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &wsClient{conn: conn}
	log := x_log.From(r.Context())

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Debug().Msg("ws client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
		log.Debug().Msg("ws client gone")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req WSRequest
		if err := json.Unmarshal(data, &req); err != nil {
			_ = c.send(WSResponse{Op: "error", Error: "invalid JSON"})
			continue
		}
		if err := c.send(h.dispatch(r.Context(), req)); err != nil {
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, req WSRequest) WSResponse {
	out := WSResponse{ID: req.ID, Op: req.Op}
	var err error

	switch req.Op {
	case "pixels":
		out.Nodes, err = h.q.Pixels(ctx, req.Name, req.Level)
	case "match":
		var m MatchResponse
		m, err = h.q.Match(ctx, req.Name, req.Color, req.Level)
		out.Nodes, out.Count = m.Nodes, &m.Count
	case "node":
		var n NodeInfo
		if n, err = h.q.Locate(ctx, req.Name, req.Level, req.X, req.Y); err == nil {
			out.Node = &n
		}
	case "list":
		out.Trees, err = h.q.List(ctx)
	default:
		err = fmt.Errorf("%w: unknown op %q", ErrBadRequest, req.Op)
	}

	if err != nil {
		return WSResponse{ID: req.ID, Op: req.Op, Error: err.Error()}
	}
	return out
}
