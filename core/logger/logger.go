package logger

// Logger exposes logging methods for common severity levels. It is the only
// logging surface the search core depends on; adapters live under infra.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
