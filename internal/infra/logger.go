package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so the rest of the tree depends on the
// infra contract rather than on the third-party module directly.
type Logger = zerolog.Logger

// NewLogger builds the process logger. Development gets a human console
// writer at debug level; everything else emits JSON at info.
func NewLogger(appEnv string) Logger {
	var (
		out   io.Writer = os.Stdout
		level           = zerolog.InfoLevel
	)
	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "helium-admin").
		Logger()
}
