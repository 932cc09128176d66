package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	// globalLogger holds the process-wide logger used by main.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a process-wide console logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = New(level, ConsoleFormat)
	})
	return globalLogger
}
