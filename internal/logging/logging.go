// Package logging exposes the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

var level = new(slog.LevelVar)

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
	Level:      level,
	TimeFormat: time.Kitchen,
}))

// Logger returns the process logger.
func Logger() *slog.Logger {
	return logger
}

// SetLevel adjusts the minimum level emitted by the process logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}
