package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// logEnv selects the log level: DEBUG, INFO, WARN or ERROR.
const logEnv = "CASEKIT_LOG"

// Logger is the global logger instance
var Logger = slog.Default()

// InitLogging initializes the logger with the level from CASEKIT_LOG.
// Logs go to w so that stdout only carries command results.
func InitLogging(w io.Writer) {
	level := new(slog.LevelVar)

	switch strings.ToUpper(os.Getenv(logEnv)) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))

	// Replace the default logger
	slog.SetDefault(Logger)
}
