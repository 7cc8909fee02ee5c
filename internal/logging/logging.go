// Package logging configures the zerolog logger shared by all commands.
//
// Output always goes to a writer supplied by the caller, normally stderr,
// because stdout carries CLI output and the MCP protocol.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a console logger writing to w at the named level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Init builds a logger with New and installs it as the zerolog global.
func Init(w io.Writer, level string) zerolog.Logger {
	logger := New(w, level)
	log.Logger = logger
	return logger
}
