package log

import "sync/atomic"

// defaultLogger is the process-wide logger used when a component is
// wired without an explicit one.
var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger replaces the process-wide default logger. A nil
// argument is ignored so callers can pass through an optional logger
// unconditionally.
func SetDefaultLogger(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// DefaultLogger returns the process-wide default logger, constructing
// one from DefaultConfig on first use.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, Default())
	return defaultLogger.Load()
}
