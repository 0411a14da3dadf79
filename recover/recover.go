// file: qtree/recover/recover.go
package recover

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/nats-io/nats.go"

	"github.com/rskv-p/qtree/pkg/x_log"
)

const (
	tagService  = "service"
	tagFunction = "function"
	tagContext  = "context"
	tagLabel    = "label"
)

// ----------------------------------------------------
// Global panic hook (optional)
// ----------------------------------------------------

var OnPanic func(service, function string, recovered any)
var custom *x_log.Logger

// SetLogger allows injecting a custom logger instance (e.g. for testing).
func SetLogger(l x_log.Logger) {
	custom = &l
}

func logger() *x_log.Logger {
	if custom != nil {
		return custom
	}
	l := x_log.New("recover")
	return &l
}

// ----------------------------------------------------
// Panic recovery functions
// ----------------------------------------------------

// RecoverWithContext captures and logs a panic with metadata and optional data.
// It must be deferred directly.
func RecoverWithContext(service, function string, data any) {
	if r := recover(); r != nil {
		RecoverExplicit(service, function, r, data)
	}
}

// RecoverExplicit logs a known recovered panic with metadata and context.
func RecoverExplicit(service, function string, recovered any, data any) {
	if recovered == nil {
		return
	}

	ev := logger().Error().
		Str(tagService, service).
		Str(tagFunction, function).
		Str("stack", string(debug.Stack()))
	if data != nil {
		ev = ev.Str(tagContext, fmt.Sprintf("%+v", data))
	}
	ev.Msgf("panic: %v", recovered)

	if OnPanic != nil {
		OnPanic(service, function, recovered)
	}
}

// Safe runs the given function safely, recovering and logging any panic with label.
func Safe(label string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger().Error().Str(tagLabel, label).Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
			if OnPanic != nil {
				OnPanic("Safe", label, r)
			}
		}
	}()
	fn()
}

// RecoverFunc runs fn and turns a panic into an error.
func RecoverFunc(label string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			RecoverExplicit("RecoverFunc", label, r, nil)
			err = fmt.Errorf("%s: panic: %v", label, r)
		}
	}()
	return fn()
}

// ----------------------------------------------------
// Handler wrappers
// ----------------------------------------------------

// RecoverHandler wraps a NATS message handler with panic recovery.
func RecoverHandler(service, function string, next nats.MsgHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		defer RecoverWithContext(service, function, msg.Subject)
		next(msg)
	}
}

// Middleware recovers panics in HTTP handlers and answers 500.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					RecoverExplicit(service, r.Method+" "+r.URL.Path, rec, nil)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ----------------------------------------------------
// Universal wrapper
// ----------------------------------------------------

// RecoverableFunc is a context-aware function that may panic.
type RecoverableFunc func(ctx context.Context) error

// WrapRecover wraps a context-aware function with panic protection.
func WrapRecover(service, function string, f RecoverableFunc) RecoverableFunc {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				RecoverExplicit(service, function, r, nil)
				err = fmt.Errorf("panic recovered in %s.%s: %v", service, function, r)
			}
		}()
		return f(ctx)
	}
}
