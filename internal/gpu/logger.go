//go:build !nogpu

package gpu

import "log/slog"

// discard is the logger of backends that were given none.
var discard = slog.New(slog.DiscardHandler)

// logger returns the backend logger. It is never nil.
func (b *Backend) logger() *slog.Logger {
	if l := b.log.Load(); l != nil {
		return l
	}
	return discard
}

// SetLogger sets the logger of the GPU backend. Nil disables logging.
func (b *Backend) SetLogger(l *slog.Logger) {
	b.log.Store(l)
}
