// servs/s_quad/quad_serv/bus.go
package quad_serv

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	recoverpkg "github.com/rskv-p/qtree/recover"
	"github.com/rskv-p/qtree/registry"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

const Version = "1.0.0"

// StartEmbedded runs an in-process nats-server on the configured host and port.
func (s *Service) StartEmbedded() (string, error) {
	opts := &server.Options{
		Host:   s.cfg.NATS.Host,
		Port:   s.cfg.NATS.Port,
		NoLog:  true,
		NoSigs: true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return "", fmt.Errorf("nats-server init: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return "", fmt.Errorf("nats-server not ready")
	}

	s.ns = ns
	s.log.Info().Str("url", ns.ClientURL()).Msg("embedded nats-server started")
	return ns.ClientURL(), nil
}

// StartBus connects to url (the configured one when empty) and serves the
// quadtree endpoints under the configured subject prefix.
func (s *Service) StartBus(url string) error {
	if url == "" {
		url = s.cfg.NATS.URL
	}
	nc, err := nats.Connect(url, nats.Name(s.cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("nats client connect: %w", err)
	}
	if err := s.Serve(nc); err != nil {
		nc.Close()
		return err
	}
	s.nc = nc
	return nil
}

// Serve registers the endpoints on an existing connection.
func (s *Service) Serve(nc *nats.Conn) error {
	svc, err := micro.AddService(nc, micro.Config{
		Name:        s.cfg.ServiceName,
		Version:     Version,
		Description: "quadtree color queries",
		QueueGroup:  s.cfg.NATS.QueueGroup,
	})
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}

	grp := svc.AddGroup(s.cfg.NATS.Prefix)
	endpoints := map[string]micro.HandlerFunc{
		quad_api.SubjectBuild:  s.handleBuild,
		quad_api.SubjectPixels: s.handlePixels,
		quad_api.SubjectMatch:  s.handleMatch,
		quad_api.SubjectNode:   s.handleNode,
		quad_api.SubjectList:   s.handleList,
		quad_api.SubjectRemove: s.handleRemove,
	}
	for name, h := range endpoints {
		if err := grp.AddEndpoint(name, s.recovered(name, h)); err != nil {
			_ = svc.Stop()
			return fmt.Errorf("add endpoint %s: %w", name, err)
		}
	}

	s.micro = svc
	s.events = &busWatcher{nc: nc, subject: quad_api.Subject(s.cfg.NATS.Prefix, quad_api.SubjectEvents)}
	s.reg.AddWatcher(s.events)
	s.log.Info().Str("prefix", s.cfg.NATS.Prefix).Str("queue", s.cfg.NATS.QueueGroup).Msg("bus endpoints ready")
	return nil
}

// Stop stops the endpoints, the connection and the embedded server.
func (s *Service) Stop() error {
	if s.events != nil {
		s.reg.RemoveWatcher(s.events)
	}
	if s.micro != nil {
		_ = s.micro.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
	if s.ns != nil {
		s.ns.Shutdown()
	}
	s.reg.Close()
	return nil
}

//---------------------
// Endpoint handlers
//---------------------

func (s *Service) handleBuild(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	var in quad_api.BuildRequest
	if !decode(req, &in) {
		return
	}
	info, err := s.Build(ctx, in.Name, in.Pixels)
	respond(req, quad_api.BuildResponse{Tree: info}, err)
}

func (s *Service) handlePixels(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	var in quad_api.PixelsRequest
	if !decode(req, &in) {
		return
	}
	nodes, err := s.Pixels(ctx, in.Name, in.Level)
	respond(req, quad_api.PixelsResponse{Nodes: nodes}, err)
}

func (s *Service) handleMatch(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	var in quad_api.MatchRequest
	if !decode(req, &in) {
		return
	}
	out, err := s.Match(ctx, in.Name, in.Color, in.Level)
	respond(req, out, err)
}

func (s *Service) handleNode(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	var in quad_api.NodeRequest
	if !decode(req, &in) {
		return
	}
	node, err := s.Locate(ctx, in.Name, in.Level, in.X, in.Y)
	respond(req, quad_api.NodeResponse{Node: node}, err)
}

func (s *Service) handleList(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	trees, err := s.List(ctx)
	respond(req, quad_api.ListResponse{Trees: trees}, err)
}

func (s *Service) handleRemove(req micro.Request) {
	ctx, cancel := s.reqCtx()
	defer cancel()

	var in quad_api.RemoveRequest
	if !decode(req, &in) {
		return
	}
	err := s.Remove(ctx, in.Name)
	respond(req, quad_api.RemoveResponse{Success: err == nil}, err)
}

func (s *Service) reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.NATS.Timeout)
}

func (s *Service) recovered(name string, h micro.HandlerFunc) micro.HandlerFunc {
	return func(req micro.Request) {
		defer func() {
			if r := recover(); r != nil {
				recoverpkg.RecoverExplicit(s.cfg.ServiceName, name, r, req.Subject())
				_ = req.Error("500", "internal error", nil)
			}
		}()
		h(req)
	}
}

// busWatcher forwards registry events to <prefix>.events.
type busWatcher struct {
	nc      *nats.Conn
	subject string
}

func (w *busWatcher) Notify(e registry.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = w.nc.Publish(w.subject, data)
}

func decode(req micro.Request, v any) bool {
	if len(req.Data()) == 0 {
		return true
	}
	if err := json.Unmarshal(req.Data(), v); err != nil {
		_ = req.Error("400", "invalid JSON", nil)
		return false
	}
	return true
}

func respond(req micro.Request, v any, err error) {
	if err != nil {
		_ = req.Error(strconv.Itoa(quad_api.StatusCode(err)), err.Error(), nil)
		return
	}
	_ = req.RespondJSON(v)
}
