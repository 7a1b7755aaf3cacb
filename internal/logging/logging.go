// =============================================================================
// internal/logging/logging.go - File logger setup
// =============================================================================
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// DefaultFile is the log file written when logging is enabled
const DefaultFile = "mktool.log"

var levelAliases = map[string]zerolog.Level{
	"verbose":     zerolog.TraceLevel,
	"information": zerolog.InfoLevel,
	"warning":     zerolog.WarnLevel,
}

// ParseLevel accepts zerolog level names and the long names older
// configurations use, ignoring case
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if level, ok := levelAliases[name]; ok {
		return level, nil
	}
	switch name {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return zerolog.ParseLevel(name)
	}
	return zerolog.NoLevel, failure.New(failure.LoggingInit,
		"unknown log level '%s', expected trace, debug, info, warn, error or fatal", name)
}

// New creates the run logger. An empty level disables logging. Otherwise
// file is truncated and receives JSON lines tagged with a per-run id. The
// returned closer releases the file.
func New(level, file string) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	if file == "" {
		file = DefaultFile
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, failure.Wrapf(failure.LoggingInit, err, "cannot open log file")
	}

	return NewWithWriter(lvl, f), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewWithWriter creates a run logger on w at level
func NewWithWriter(level zerolog.Level, w io.Writer) zerolog.Logger {
	// the global level would otherwise still filter trace events
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("run", xid.New().String()).
		Logger()
}
