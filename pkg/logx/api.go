package logx

import (
	"fmt"
	"io"
)

var defaultLogger = NewLogger(LoadFromEnv())

// SetDefaultLogger replaces the package-level logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

func GetDefaultLogger() *Logger {
	return defaultLogger
}

func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// ============================================================================
// Simple Logging Functions
// ============================================================================

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// ============================================================================
// Formatted Logging Functions
// ============================================================================

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// ============================================================================
// Structured Logging
// ============================================================================

func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

func WithField(key string, value any) *Entry {
	return defaultLogger.WithField(key, value)
}

func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}
