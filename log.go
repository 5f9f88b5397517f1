package pubsublatest

import (
	"log/slog"
	"os"

	"github.com/jonoton/go-pubsublatest/internal/logattr"
)

// logLevel drives the package default logger. Debug output is off by default.
var logLevel = new(slog.LevelVar)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

// SetDebug enables or disables debug logging on the package default logger.
// Buses created with WithLogger are not affected.
func SetDebug(enable bool) {
	if enable {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelInfo)
}

// busLogger picks the logger a bus writes through. A configured logger wins.
// Debug without one gets a private debug-level handler; the shared default's
// level is left alone.
func busLogger(configured *slog.Logger, debug bool) *slog.Logger {
	switch {
	case configured != nil:
		return configured
	case debug:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return defaultLogger
	}
}

func componentLogger(base *slog.Logger, component string) *slog.Logger {
	return base.With(logattr.Component(component))
}
