// file: qtree/codec/grid.go
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rskv-p/qtree/pkg/x_color"
)

var (
	ErrPayload       = errors.New("invalid payload")
	ErrEmptyGrid     = errors.New("grid is empty")
	ErrNotSquare     = errors.New("grid is not square")
	ErrNotPowerOfTwo = errors.New("grid side is not a power of two")
)

// Grid is a square pixel grid indexed [row][col], i.e. [y][x].
type Grid [][]int

// Side returns the number of rows.
func (g Grid) Side() int { return len(g) }

// Validate checks that g is non-empty, square and has a power-of-two side.
func (g Grid) Validate() error {
	n := len(g)
	if n == 0 {
		return ErrEmptyGrid
	}
	for y, row := range g {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, y, len(row), n)
		}
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	return nil
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]int(nil), row...)
	}
	return out
}

//---------------------
// Decoding
//---------------------

// DecodeGrid reads a grid written either as a JSON array of rows or as text
// rows of whitespace- or comma-separated colors (decimal, 0x hex, #rrggbb).
// Lines starting with "//" are comments. The result is validated.
func DecodeGrid(r io.Reader) (Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyGrid
	}

	var g Grid
	if data[0] == '[' {
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayload, err)
		}
	} else if g, err = decodeText(data); err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeText(data []byte) (Grid, error) {
	var g Grid
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		row := make([]int, 0, len(fields))
		for _, f := range fields {
			c, err := x_color.Parse(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrPayload, line, err)
			}
			row = append(row, c)
		}
		g = append(g, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return g, nil
}

// ParseGrid decodes a grid from a string.
func ParseGrid(s string) (Grid, error) {
	return DecodeGrid(strings.NewReader(s))
}

// LoadGrid decodes a grid from a file.
func LoadGrid(path string) (Grid, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open grid %s: %w", path, err)
	}
	defer f.Close()
	return DecodeGrid(f)
}

// EncodeGrid writes g as a JSON array of rows.
func EncodeGrid(w io.Writer, g Grid) error {
	return json.NewEncoder(w).Encode(g)
}
