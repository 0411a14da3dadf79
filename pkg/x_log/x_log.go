// Package x_log provides the zerolog-based logger shared by all packages,
// with lipgloss console styling and lumberjack file rotation.
package x_log

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type (
	Logger = zerolog.Logger
	Level  = zerolog.Level
)

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

//
// ---------- Init ----------

// Init configures the global logger from LoadConfig("").
func Init() {
	cfg, err := LoadConfig("")
	if err != nil {
		def := defaultConfig
		cfg = &def
	}
	InitWithConfig(cfg, "qtree")
	if err != nil {
		log.Warn().Err(err).Msg("logger config ignored, using defaults")
	}
}

// InitWithConfig configures the global logger and level.
func InitWithConfig(cfg *Config, service string) {
	cfg.normalize()
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var writers []io.Writer
	if cfg.Console {
		var th *Theme
		if isTerminal(os.Stdout) {
			th = ThemeByName(cfg.Style)
		}
		writers = append(writers, NewConsoleWriter(os.Stdout, th))
	}
	if f := cfg.File; f.Enabled {
		file := &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAgeDays,
			Compress:   f.Compress,
		}
		if f.Colored {
			writers = append(writers, NewConsoleWriter(file, ThemeByName(cfg.Style)))
		} else {
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// ParseLevel maps a config string to a level, falling back to info.
func ParseLevel(s string) Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return InfoLevel
	}
	return lvl
}

// SetLevel changes the global level at runtime.
func SetLevel(s string) {
	zerolog.SetGlobalLevel(ParseLevel(s))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

//
// ---------- Scoped Loggers ----------

// New returns a child of the global logger tagged with module.
func New(module string) Logger {
	return log.Logger.With().Str("module", module).Logger()
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return l.WithContext(ctx)
}

// From returns the logger stored in ctx, or the global one.
func From(ctx context.Context) *Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

//
// ---------- Shortcuts ----------

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }
