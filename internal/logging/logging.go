package logging

import (
	"io"
	"log"
	"os"
)

// Logger is a small leveled wrapper around the standard log package.
// Debug output is suppressed unless the SOP_DEBUG environment variable
// is set, so seeding and serving stay quiet in normal operation.
type Logger struct {
	*log.Logger
	debug bool
}

// NewLogger creates a Logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a Logger writing to the given destination.
func NewLoggerTo(w io.Writer) *Logger {
	_, debug := os.LookupEnv("SOP_DEBUG")
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
		debug:  debug,
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Printf("INFO: "+msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Printf("WARN: "+msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Printf("ERROR: "+msg, args...)
}

// Debug logs a debug message when debug output is enabled.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.Printf("DEBUG: "+msg, args...)
}
