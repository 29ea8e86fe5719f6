package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Text output on stdout so
// the portal's logs stay greppable behind the reverse proxy.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
