// servs/s_quad/quad_api/handlers.go
package quad_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rskv-p/qtree/codec"
	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/pkg/x_log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleList returns every known tree.
func handleList(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trees, err := q.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ListResponse{Trees: trees})
	}
}

// handleBuild builds a tree from the grid in the body (JSON or text rows).
func handleBuild(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid, err := codec.DecodeGrid(http.MaxBytesReader(w, r.Body, 64<<20))
		if err != nil {
			writeError(w, r, err)
			return
		}
		info, err := q.Build(r.Context(), chi.URLParam(r, "name"), grid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, BuildResponse{Tree: info})
	}
}

// handleRemove drops a tree.
func handleRemove(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := q.Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlePixels lists the nodes at ?level=.
func handlePixels(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, err := intParam(r, "level", 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		nodes, err := q.Pixels(r.Context(), chi.URLParam(r, "name"), level)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, PixelsResponse{Nodes: nodes})
	}
}

// handleMatch searches ?level= for nodes similar to ?color=.
func handleMatch(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("color")
		if raw == "" {
			writeError(w, r, fmt.Errorf("%w: color is required", ErrBadRequest))
			return
		}
		color, err := x_color.Parse(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
		level, err := intParam(r, "level", 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := q.Match(r.Context(), chi.URLParam(r, "name"), color, level)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleNode locates the node containing ?x=&y= at ?level=.
func handleNode(q IQuad) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var vals [3]int
		for i, key := range []string{"level", "x", "y"} {
			v, err := intParam(r, key, 0)
			if err != nil {
				writeError(w, r, err)
				return
			}
			vals[i] = v
		}
		node, err := q.Locate(r.Context(), chi.URLParam(r, "name"), vals[0], vals[1], vals[2])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, NodeResponse{Node: node})
	}
}

//---------------------
// Helpers
//---------------------

func intParam(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadRequest, key, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		x_log.From(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Code:  status,
		ReqID: w.Header().Get(HeaderRequestID),
	})
}
