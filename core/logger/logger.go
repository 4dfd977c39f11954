package logger

// Logger is the minimal logging contract used across the simulator.
// Implementations live under infra/logger so core packages never depend
// on a concrete logging backend.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
