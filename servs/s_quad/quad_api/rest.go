// servs/s_quad/quad_api/rest.go
package quad_api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	recoverpkg "github.com/rskv-p/qtree/recover"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/registry"
)

// Watchable is the part of the registry the websocket feed subscribes to.
type Watchable interface {
	AddWatcher(registry.Watcher)
	RemoveWatcher(registry.Watcher)
}

// RouterConfig wires the HTTP API.
type RouterConfig struct {
	Service    string
	AuthSecret string // HS256 secret; empty disables auth
	Events     Watchable
}

// NewRouter builds the chi router serving q.
func NewRouter(q IQuad, cfg RouterConfig) (http.Handler, *Hub) {
	hub := NewHub(q)
	if cfg.Events != nil {
		cfg.Events.AddWatcher(hub)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(recoverpkg.Middleware(cfg.Service))

	// Public endpoints
	r.Get("/health", handleHealth)

	// Protected API endpoints
	r.Group(func(r chi.Router) {
		if cfg.AuthSecret != "" {
			r.Use(JWTMiddleware([]byte(cfg.AuthSecret)))
		}

		r.Route("/trees", func(r chi.Router) {
			r.Get("/", handleList(q))
			r.Post("/{name}", handleBuild(q))
			r.Delete("/{name}", handleRemove(q))
			r.Get("/{name}/pixels", handlePixels(q))
			r.Get("/{name}/match", handleMatch(q))
			r.Get("/{name}/node", handleNode(q))
		})
		r.Get("/ws", hub.HandleWS)
	})

	return r, hub
}

// ServeREST runs the HTTP server until ctx is cancelled.
func ServeREST(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		x_log.Info().Str("addr", addr).Msg("REST API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
