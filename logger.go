package voronoi

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// silent is the package logger until SetLogger is called.
var silent = slog.New(slog.DiscardHandler)

// current holds the package logger. SetLogger may race with logging from
// view goroutines.
var current atomic.Pointer[slog.Logger]

func init() { current.Store(silent) }

// SetLogger configures the logger for voronoi and the backends of plugins
// created without WithLogger. By default, voronoi produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by voronoi:
//   - [slog.LevelDebug]: per-view diagnostics (pass counts, texture sizes)
//   - [slog.LevelInfo]: lifecycle events (backend selected, plugin closed)
//   - [slog.LevelWarn]: skipped work (missing resources, pipeline and
//     allocation failures)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	voronoi.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	voronoi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)

	// Propagate to the backends that follow the package logger.
	followersMu.Lock()
	backends := make([]any, 0, len(followers))
	for b := range followers {
		backends = append(backends, b)
	}
	followersMu.Unlock()
	for _, b := range backends {
		propagateLogger(b, l)
	}
}

// Logger returns the current logger used by voronoi.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return current.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a backend if it implements the
// loggerSetter interface.
func propagateLogger(b any, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// followers are the backends of live plugins without their own logger.
var (
	followersMu sync.Mutex
	followers   = make(map[loggerSetter]int)
)

// follow hands the package logger to b now and on every SetLogger call
// until unfollow.
func follow(b any) {
	ls, ok := b.(loggerSetter)
	if !ok {
		return
	}
	followersMu.Lock()
	followers[ls]++
	followersMu.Unlock()
	ls.SetLogger(Logger())
}

func unfollow(b any) {
	ls, ok := b.(loggerSetter)
	if !ok {
		return
	}
	followersMu.Lock()
	defer followersMu.Unlock()
	if followers[ls]--; followers[ls] <= 0 {
		delete(followers, ls)
	}
}
