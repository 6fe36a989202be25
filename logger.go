package colormanage

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so callers never
// format attributes while logging is off.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger routes diagnostics from colormanage, its engine and its cache
// to l. Nothing is logged until SetLogger is called; nil turns logging off
// again. Existing Managers see the change at once.
//
// Levels:
//   - [slog.LevelDebug]: cache misses, unknown color space names, catalog sizes
//   - [slog.LevelInfo]: which config was loaded, settings that were corrected
//   - [slog.LevelWarn]: fallback config, missing roles, processors that
//     failed to build
//
//	colormanage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger set by SetLogger, or a silent one.
func Logger() *slog.Logger {
	return active.Load()
}
