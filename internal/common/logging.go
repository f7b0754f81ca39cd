package common

import (
	"log/slog"
	"os"
)

// NewLogger returns the JSON stderr logger shared by all commands.
// quiet wins over verbose.
func NewLogger(verbose, quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
