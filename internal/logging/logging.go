// Package logging builds the zerolog logger shared by both binaries.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with the service name and environment.
// Outside production it writes human-readable console output at debug level.
func New(serviceName, env string) zerolog.Logger {
	const prod = "production"

	level := zerolog.DebugLevel
	if env == prod {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if env == prod {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}
