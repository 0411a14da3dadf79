package quad_api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/pkg/x_quad"
	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, quad_api.StatusCode(nil))
	assert.Equal(t, http.StatusNotFound, quad_api.StatusCode(fmt.Errorf("%w: x", quad_api.ErrTreeNotFound)))
	assert.Equal(t, http.StatusNotFound, quad_api.StatusCode(quad_api.ErrNoNode))
	assert.Equal(t, http.StatusBadRequest, quad_api.StatusCode(quad_api.ErrInvalidLevel))
	assert.Equal(t, http.StatusBadRequest, quad_api.StatusCode(codec.ErrNotSquare))
	assert.Equal(t, http.StatusUnprocessableEntity, quad_api.StatusCode(x_quad.ErrPartialNode))
	assert.Equal(t, http.StatusInternalServerError, quad_api.StatusCode(errors.New("db down")))
}

func TestErrorFromCode(t *testing.T) {
	assert.ErrorIs(t, quad_api.ErrorFromCode("404", "tree not found: x"), quad_api.ErrTreeNotFound)
	assert.ErrorIs(t, quad_api.ErrorFromCode("404", "point is outside the tree: (9,9) level 0"), quad_api.ErrNoNode)
	assert.ErrorIs(t, quad_api.ErrorFromCode("400", quad_api.ErrInvalidLevel.Error()), quad_api.ErrInvalidLevel)
	assert.ErrorIs(t, quad_api.ErrorFromCode("400", "grid is not square"), quad_api.ErrBadRequest)
	assert.ErrorIs(t, quad_api.ErrorFromCode("422", "partial"), x_quad.ErrPartialNode)

	err := quad_api.ErrorFromCode("500", "boom")
	var remote *quad_api.RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, 500, remote.Code)
	assert.Equal(t, "remote 500: boom", err.Error())
}
