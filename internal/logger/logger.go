package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// Errors are also sent to Sentry when a DSN is given.
// The returned func flushes buffered Sentry events and should run before exit.
func Init(isDev bool, sentryDSN string) func() {
	handlers := []slog.Handler{stdoutHandler(os.Stdout, isDev)}

	flush := func() {}
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			Environment:      environment(isDev),
			TracesSampleRate: 0.2,
		})
		if err != nil {
			slog.Warn("sentry init failed, continuing without error tracking", "error", err)
		} else {
			handlers = append(handlers, slogsentry.Option{
				Level:     slog.LevelError,
				AddSource: true,
			}.NewSentryHandler())
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	Log = slog.New(combine(handlers))
	slog.SetDefault(Log)
	return flush
}

// New builds a standalone logger writing to w. Used by the CLI, which keeps
// stdout for command output.
func New(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(stdoutHandler(w, verbose))
}

func stdoutHandler(w io.Writer, isDev bool) slog.Handler {
	if isDev {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

func combine(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return slogmulti.Fanout(handlers...)
}

func environment(isDev bool) string {
	if isDev {
		return "development"
	}
	return "production"
}
