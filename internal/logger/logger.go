// Package logger builds the zerolog loggers used by the dynobject CLI and
// the processor driver.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "DYNOBJECT_LOG_LEVEL"
	EnvFormat = "DYNOBJECT_LOG_FORMAT"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger.
type Options struct {
	Level      string
	Format     string
	Service    string
	Writer     io.Writer
	WithCaller bool
}

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// FromEnv builds Options from DYNOBJECT_LOG_* variables. Output goes to
// stderr so command output on stdout stays clean.
func FromEnv() Options {
	return Options{
		Level:   strings.ToLower(envOr(EnvLevel, "info")),
		Format:  strings.ToLower(envOr(EnvFormat, FormatConsole)),
		Service: "dynobject",
		Writer:  os.Stderr,
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// New builds a logger from opt.
func New(opt Options) Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	log := ctx.Logger()
	if opt.WithCaller {
		log = log.With().Caller().Logger()
	}
	return log
}

var (
	once   sync.Once
	root   atomic.Pointer[Logger]
	inited atomic.Bool
)

// Init builds the process-wide root logger from opt. Only the first call has
// an effect.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		log := New(opt)
		root.Store(&log)
		inited.Store(true)
	})
}

// Get returns the root logger, initializing it from the environment when
// Init was never called.
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
