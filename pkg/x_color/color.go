// Package x_color provides the pixel averaging and color tolerance functions
// consumed by the quadtree.
package x_color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidMode  = errors.New("invalid_color_mode")
	ErrInvalidColor = errors.New("invalid_color_value")
)

type Mode string

const (
	ModeRGB  Mode = "rgb"  // 0xRRGGBB packed channels
	ModeGray Mode = "gray" // plain scalar values

	DefaultTolerance = 10
)

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return ModeRGB, nil
	case "gray", "grey", "scalar":
		return ModeGray, nil
	default:
		return ModeRGB, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Funcs returns the averaging and similarity functions for a mode.
func Funcs(mode Mode, tolerance int) (func([][]int, int, int, int) int, func(int, int) bool) {
	if mode == ModeGray {
		return AverageGray, SimilarGray(tolerance)
	}
	return AverageRGB, SimilarRGB(tolerance)
}

//---------------------
// Channels
//---------------------

// RGB packs three 8-bit channels.
func RGB(r, g, b int) int {
	return (r&0xff)<<16 | (g&0xff)<<8 | b&0xff
}

// Channels splits a packed color.
func Channels(c int) (r, g, b int) {
	return (c >> 16) & 0xff, (c >> 8) & 0xff, c & 0xff
}

// Parse reads a color written as decimal, 0x-prefixed hex or #rrggbb.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil || len(s) != 7 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return int(v), nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return int(v), nil
}

// Hex formats a packed color as #rrggbb.
func Hex(c int) string {
	r, g, b := Channels(c)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

//---------------------
// Averages
//---------------------

// AverageGray returns the truncated mean of the window at (x, y).
func AverageGray(pixels [][]int, x, y, size int) int {
	if size <= 0 {
		return 0
	}
	var sum int64
	for row := y; row < y+size; row++ {
		for col := x; col < x+size; col++ {
			sum += int64(pixels[row][col])
		}
	}
	return int(sum / int64(size*size))
}

// AverageRGB returns the per-channel truncated mean of the window at (x, y).
func AverageRGB(pixels [][]int, x, y, size int) int {
	if size <= 0 {
		return 0
	}
	var r, g, b int64
	for row := y; row < y+size; row++ {
		for col := x; col < x+size; col++ {
			cr, cg, cb := Channels(pixels[row][col])
			r += int64(cr)
			g += int64(cg)
			b += int64(cb)
		}
	}
	n := int64(size * size)
	return RGB(int(r/n), int(g/n), int(b/n))
}

//---------------------
// Similarity
//---------------------

// SimilarGray accepts values at most tolerance apart.
func SimilarGray(tolerance int) func(a, b int) bool {
	return func(a, b int) bool {
		return abs(a-b) <= tolerance
	}
}

// SimilarRGB accepts colors whose every channel is at most tolerance apart.
func SimilarRGB(tolerance int) func(a, b int) bool {
	return func(a, b int) bool {
		ar, ag, ab := Channels(a)
		br, bg, bb := Channels(b)
		return abs(ar-br) <= tolerance &&
			abs(ag-bg) <= tolerance &&
			abs(ab-bb) <= tolerance
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
