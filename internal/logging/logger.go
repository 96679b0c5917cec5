// Package logging wires up the gateway's structured logger. It mirrors the
// teacher's logger package: a process-wide zerolog.Logger configured once
// from level/format strings, console writer for local dev and JSON for
// production.
package logging

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// Get returns the process-wide logger, initializing a sane default (console,
// info level) the first time it is called before Init runs.
func Get() zerolog.Logger {
	once.Do(func() {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	return globalLogger
}

// Init configures the global zerolog logger and level from config strings,
// and points github.com/rs/zerolog/log's package-level logger at the same
// instance so component packages can log via log.Info()... directly.
func Init(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}

	var logger zerolog.Logger
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	default:
		return errors.New("unsupported log format: " + format)
	}

	once.Do(func() {})
	zerolog.SetGlobalLevel(lvl)
	globalLogger = logger.Level(lvl)
	log.Logger = globalLogger
	return nil
}
