// file:qtree/pkg/x_quad/option.go
package x_quad

import (
	"github.com/rs/zerolog"

	"github.com/rskv-p/qtree/pkg/x_color"
	"github.com/rskv-p/qtree/pkg/x_log"
)

// AverageFunc returns the mean color of the size x size window at (x, y).
type AverageFunc func(pixels [][]int, x, y, size int) int

// SimilarFunc is a symmetric tolerance check between two colors.
type SimilarFunc func(a, b int) bool

// Option configures a Tree.
type Option func(*options)

type options struct {
	average AverageFunc
	similar SimilarFunc
	strict  bool
	log     zerolog.Logger
}

func defaultOptions() options {
	return options{
		average: x_color.AverageRGB,
		similar: x_color.SimilarRGB(x_color.DefaultTolerance),
		log:     x_log.New("quad"),
	}
}

// WithAverage sets the window averaging function.
func WithAverage(f AverageFunc) Option {
	return func(o *options) {
		if f != nil {
			o.average = f
		}
	}
}

// WithSimilar sets the color similarity predicate used by FindMatching.
func WithSimilar(f SimilarFunc) Option {
	return func(o *options) {
		if f != nil {
			o.similar = f
		}
	}
}

// WithStrict makes Pixels fail on a malformed subtree instead of skipping it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithLogger sets the logger used to report skipped subtrees.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}
