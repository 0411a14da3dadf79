// servs/s_quad/quad_api/codes.go
package quad_api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/pkg/x_quad"
	"github.com/rskv-p/qtree/registry"
)

// StatusCode maps domain errors onto HTTP status codes. The bus endpoints
// reuse the same codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTreeNotFound), errors.Is(err, ErrNoNode):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidLevel),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, registry.ErrInvalidName),
		errors.Is(err, codec.ErrPayload),
		errors.Is(err, codec.ErrEmptyGrid),
		errors.Is(err, codec.ErrNotSquare),
		errors.Is(err, codec.ErrNotPowerOfTwo):
		return http.StatusBadRequest
	case errors.Is(err, x_quad.ErrPartialNode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromCode rebuilds a sentinel-wrapped error from a remote code and
// description so callers can use errors.Is across the bus.
func ErrorFromCode(code, description string) error {
	c, _ := strconv.Atoi(code)
	var base error
	switch c {
	case http.StatusNotFound:
		base = ErrTreeNotFound
		if strings.HasPrefix(description, ErrNoNode.Error()) {
			base = ErrNoNode
		}
	case http.StatusBadRequest:
		base = ErrBadRequest
		if strings.HasPrefix(description, ErrInvalidLevel.Error()) {
			base = ErrInvalidLevel
		}
	case http.StatusUnprocessableEntity:
		base = x_quad.ErrPartialNode
	default:
		return &RemoteError{Code: c, Description: description}
	}
	return &RemoteError{Code: c, Description: description, base: base}
}

// RemoteError is an error reported by a remote endpoint.
type RemoteError struct {
	Code        int
	Description string
	base        error
}

func (e *RemoteError) Error() string {
	return "remote " + strconv.Itoa(e.Code) + ": " + e.Description
}

func (e *RemoteError) Unwrap() error { return e.base }
