// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// The TUI owns the terminal, so log output goes to a file in the data
// directory rather than stderr. CLI subcommands route the same logger to
// the console instead. All packages log through zerolog's global logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileName is the log file created inside the data directory.
const LogFileName = "regchat.log"

var (
	mu     sync.Mutex
	closer io.Closer
)

// ParseLevel maps a config level string to a zerolog level, defaulting to
// info for unknown values.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitFile routes the global logger to <dataDir>/regchat.log.
// Returns an error if the file cannot be opened; the logger is silenced in
// that case so stray output cannot corrupt the TUI.
func InitFile(dataDir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Logger = zerolog.Nop()
		return err
	}

	path := filepath.Join(dataDir, LogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Logger = zerolog.Nop()
		return err
	}

	if closer != nil {
		closer.Close()
	}
	closer = f
	log.Logger = zerolog.New(f).Level(ParseLevel(level)).With().Timestamp().Logger()
	return nil
}

// InitConsole routes the global logger to stderr with human-readable
// output. Used by CLI subcommands, never by the TUI.
func InitConsole(level string) {
	mu.Lock()
	defer mu.Unlock()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Close releases the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
		closer = nil
	}
	log.Logger = zerolog.Nop()
}
