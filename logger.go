package maskedit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so the caller skips message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that SetLogger
// can be called while storage requests are in flight on other goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by maskedit. By default nothing is
// logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-stroke and per-composite diagnostics
//   - [slog.LevelInfo]: session lifecycle (open, save, close)
//   - [slog.LevelWarn]: skipped mask data, failed uploads and fetches
//
// Example:
//
//	maskedit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
