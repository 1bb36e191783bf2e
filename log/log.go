package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the interface for logging.
type Logger interface {
	// Printf prints a formated message to the log.
	Printf(format string, v ...interface{})

	// Print prints a message to the log.
	Print(v ...interface{})

	// Fatalf
	Fatalf(format string, v ...interface{})

	// Fatal
	Fatal(v ...interface{})

	// Level returns the logging level.
	Level() Level
}

// Level represents the log level.
type Level int

const (
	// DebugLevel represents the debug-level.
	DebugLevel Level = iota
	// InfoLevel represents the info-level.
	InfoLevel
	// ErrorLevel represents the error-level.
	ErrorLevel
	// DisabledLevel represents that the logger is defabled.
	DisabledLevel
)

var zerologLevels = [...]zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.ErrorLevel, zerolog.Disabled}

func (l Level) zerolog() zerolog.Level {
	if l < DebugLevel || l > DisabledLevel {
		return zerolog.Disabled
	}
	return zerologLevels[l]
}

var (
	// Debug is a debug-level logger.
	Debug = &logger{DebugLevel}
	// Info is an info-level logger.
	Info = &logger{InfoLevel}
	// Error is an error-level logger.
	Error = &logger{ErrorLevel}
)

var mu sync.RWMutex

var current = newBackend(os.Stderr, false, InfoLevel)

type backend struct {
	level Level
	zl    zerolog.Logger
}

func newBackend(w io.Writer, structured bool, level Level) *backend {
	if !structured {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006/01/02 15:04:05"}
	}
	return &backend{
		level: level,
		zl:    zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

func getBackend() *backend {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

type logger struct {
	level Level
}

func (l logger) event(b *backend) *zerolog.Event {
	switch l.level {
	case DebugLevel:
		return b.zl.Debug()
	case InfoLevel:
		return b.zl.Info()
	default:
		return b.zl.Error()
	}
}

func (l logger) Printf(format string, v ...interface{}) {
	b := getBackend()
	if l.level >= b.level {
		l.event(b).Msgf(format, v...)
	}
}

func (l logger) Print(v ...interface{}) {
	b := getBackend()
	if l.level >= b.level {
		l.event(b).Msg(fmt.Sprint(v...))
	}
}

func (l logger) Fatalf(format string, v ...interface{}) {
	b := getBackend()
	if l.level >= b.level {
		b.zl.Fatal().Msgf(format, v...)
	}
}

func (l logger) Fatal(v ...interface{}) {
	b := getBackend()
	if l.level >= b.level {
		b.zl.Fatal().Msg(fmt.Sprint(v...))
	}
}

func (l logger) Level() Level {
	return l.level
}

// CurrentLevel returns the current logging level.
func CurrentLevel() Level {
	return getBackend().level
}

// SetLevel sets the current logging level.
func SetLevel(level Level) {
	mu.Lock()
	current.level = level
	current.zl = current.zl.Level(level.zerolog())
	mu.Unlock()
}

// ParseLevel returns the level named by name: "debug", "info", "error" or "disabled".
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "error":
		return ErrorLevel, true
	case "disabled":
		return DisabledLevel, true
	}
	return DisabledLevel, false
}

// SetLevelByName sets the current logging level with a name.
// Unknown names leave the level unchanged and return false.
func SetLevelByName(name string) bool {
	level, ok := ParseLevel(name)
	if ok {
		SetLevel(level)
	}
	return ok
}

// SetOutput redirects the log to w. When structured is true, each entry is written as a JSON line;
// otherwise entries are formatted for the console.
func SetOutput(w io.Writer, structured bool) {
	mu.Lock()
	current = newBackend(w, structured, current.level)
	mu.Unlock()
}
