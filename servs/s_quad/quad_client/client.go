// servs/s_quad/quad_client/client.go
package quad_client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	recoverpkg "github.com/rskv-p/qtree/recover"
	"github.com/rskv-p/qtree/registry"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

var _ quad_api.IQuad = (*Client)(nil)

// Client calls the quadtree bus endpoints.
type Client struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
}

// New returns a client for the endpoints served under prefix.
func New(nc *nats.Conn, prefix string) *Client {
	return &Client{
		nc:      nc,
		prefix:  prefix,
		timeout: 2 * time.Second,
	}
}

// WithTimeout sets the per-call timeout used when ctx has no deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Client) Build(ctx context.Context, name string, pixels [][]int) (quad_api.TreeInfo, error) {
	var out quad_api.BuildResponse
	err := c.call(ctx, quad_api.SubjectBuild, quad_api.BuildRequest{Name: name, Pixels: pixels}, &out)
	return out.Tree, err
}

func (c *Client) Pixels(ctx context.Context, name string, level int) ([]quad_api.NodeInfo, error) {
	var out quad_api.PixelsResponse
	err := c.call(ctx, quad_api.SubjectPixels, quad_api.PixelsRequest{Name: name, Level: level}, &out)
	return out.Nodes, err
}

func (c *Client) Match(ctx context.Context, name string, color, level int) (quad_api.MatchResponse, error) {
	var out quad_api.MatchResponse
	err := c.call(ctx, quad_api.SubjectMatch, quad_api.MatchRequest{Name: name, Color: color, Level: level}, &out)
	return out, err
}

func (c *Client) Locate(ctx context.Context, name string, level, x, y int) (quad_api.NodeInfo, error) {
	var out quad_api.NodeResponse
	err := c.call(ctx, quad_api.SubjectNode, quad_api.NodeRequest{Name: name, Level: level, X: x, Y: y}, &out)
	return out.Node, err
}

func (c *Client) List(ctx context.Context) ([]quad_api.TreeInfo, error) {
	var out quad_api.ListResponse
	err := c.call(ctx, quad_api.SubjectList, quad_api.ListRequest{}, &out)
	return out.Trees, err
}

func (c *Client) Remove(ctx context.Context, name string) error {
	return c.call(ctx, quad_api.SubjectRemove, quad_api.RemoveRequest{Name: name}, nil)
}

// Watch delivers registry events published by the service until ctx ends.
func (c *Client) Watch(ctx context.Context, fn func(registry.Event)) error {
	subject := quad_api.Subject(c.prefix, quad_api.SubjectEvents)
	sub, err := c.nc.Subscribe(subject, recoverpkg.RecoverHandler("quad_client", "watch", func(msg *nats.Msg) {
		var e registry.Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return
		}
		fn(e)
	}))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}

// call sends a JSON request and decodes the reply into out, turning
// service error headers into errors.
func (c *Client) call(ctx context.Context, endpoint string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	subject := quad_api.Subject(c.prefix, endpoint)
	msg, err := c.nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("%s: %w", subject, err)
	}

	if desc := msg.Header.Get(micro.ErrorHeader); desc != "" {
		return quad_api.ErrorFromCode(msg.Header.Get(micro.ErrorCodeHeader), desc)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(msg.Data, out); err != nil {
		return fmt.Errorf("%s: decode reply: %w", subject, err)
	}
	return nil
}
