package mqttclient

import "log/slog"

// Logger is a thin wrapper over *slog.Logger, following the shape of
// pkg/logger.SlogLogger in the retrieval pack's broker: a small interface
// over structured logging rather than direct *slog.Logger plumbing, so a
// caller can substitute any slog handler without the client depending on
// one.
type Logger struct {
	l *slog.Logger
}

// NewLogger wraps an existing *slog.Logger. A nil argument falls back to
// slog.Default().
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l}
}

func (lg *Logger) Debug(msg string, args ...any) { lg.l.Debug(msg, args...) }
func (lg *Logger) Warn(msg string, args ...any)  { lg.l.Warn(msg, args...) }
func (lg *Logger) Error(msg string, args ...any) { lg.l.Error(msg, args...) }
