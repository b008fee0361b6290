package observability

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel selects the log level when no flag is given
const EnvLogLevel = "BANANA_LOG"

// DefaultLogLevel keeps the CLI quiet unless something goes wrong
const DefaultLogLevel = "warn"

// NewLogger constructs a console zerolog.Logger writing to w at level.
// Unknown levels fall back to warn.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
