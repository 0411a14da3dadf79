// servs/s_quad/quad_api/middleware.go
package quad_api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nuid"

	"github.com/rskv-p/qtree/pkg/x_log"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags each request with a nuid (or the id the caller sent) and
// stores a request-scoped logger in the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = nuid.Next()
		}
		w.Header().Set(HeaderRequestID, id)

		l := x_log.New("api").With().Str("req", id).Logger()
		next.ServeHTTP(w, r.WithContext(x_log.WithLogger(r.Context(), &l)))
	})
}

// AccessLog writes one line per request through the request logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		x_log.From(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
