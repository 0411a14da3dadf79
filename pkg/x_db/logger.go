// file: qtree/pkg/x_db/logger.go
package x_db

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rskv-p/qtree/pkg/x_log"
)

const slowQuery = 200 * time.Millisecond

// gormLogger routes gorm output to the store's zerolog logger. Statements
// are logged at debug, slow ones at warn, failures at error.
type gormLogger struct {
	log   *x_log.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l *x_log.Logger, level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l, level: level, slow: slowQuery}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.log.Info().Msgf(msg, args...)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.log.Warn().Msgf(msg, args...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.log.Error().Msgf(msg, args...)
	}
}

// Trace renders the statement only when it is going to be logged.
// ErrRecordNotFound is an ordinary lookup miss.
func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var ev *zerolog.Event
	switch {
	case g.level <= logger.Silent:
		return
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		ev = g.log.Error().Err(err)
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		ev = g.log.Warn().Bool("slow", true)
	case g.level >= logger.Info:
		ev = g.log.Debug()
	default:
		return
	}

	sql, rows := fc()
	ev.Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
}
