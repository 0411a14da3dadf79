// servs/s_quad/quad_serv/run.go
package quad_serv

import (
	"context"

	"github.com/rskv-p/qtree/config"
	"github.com/rskv-p/qtree/pkg/x_db"
	"github.com/rskv-p/qtree/pkg/x_log"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

// OpenStore opens the snapshot store cfg selects, or returns nil when
// persistence is disabled.
func OpenStore(cfg *config.Config) (*x_db.DAO, error) {
	if cfg.DB.Type == "" {
		return nil, nil
	}
	return x_db.New(x_db.Config{
		Type:     x_db.DbType(cfg.DB.Type),
		DSN:      cfg.DB.DSN,
		LogLevel: cfg.DB.LogLevel,
	})
}

// Run starts the store, the bus endpoints and the REST API as configured
// and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dao, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	if dao != nil {
		defer dao.Close()
	}

	s := New(cfg, nil, dao)
	defer s.Stop()

	url := cfg.NATS.URL
	if cfg.NATS.Embedded {
		if url, err = s.StartEmbedded(); err != nil {
			return err
		}
	}
	if url != "" {
		if err := s.StartBus(url); err != nil {
			if cfg.NATS.Embedded {
				return err
			}
			x_log.Warn().Err(err).Str("url", url).Msg("bus unavailable, serving REST only")
		}
	}

	h, _ := quad_api.NewRouter(s, quad_api.RouterConfig{
		Service:    cfg.ServiceName,
		AuthSecret: cfg.AuthSecret,
		Events:     s.Registry(),
	})
	return quad_api.ServeREST(ctx, cfg.HTTPAddr, h)
}
