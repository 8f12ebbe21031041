// Package logger provides logging for the gallery CLI.
// Info and warning messages are always written; debug messages and
// section headers only appear when verbose mode is enabled via the
// --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newBase(os.Stderr)
)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base.SetOutput(w)
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info logs an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(format, args...)
}

// Leveled adapts the package logger to the key/value leveled logger
// interface used by HTTP client libraries.
type Leveled struct {
	// Prefix is prepended to every message, e.g. "[assets]".
	Prefix string
}

func (l Leveled) entry(keysAndValues []any) *logrus.Entry {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return base.WithFields(fields)
}

func (l Leveled) msg(m string) string {
	if l.Prefix == "" {
		return m
	}
	return l.Prefix + " " + m
}

// Error logs at error level.
func (l Leveled) Error(msg string, keysAndValues ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.entry(keysAndValues).Error(l.msg(msg))
}

// Warn logs at warning level.
func (l Leveled) Warn(msg string, keysAndValues ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.entry(keysAndValues).Warn(l.msg(msg))
}

// Info is demoted to debug: HTTP clients are chatty at info level.
func (l Leveled) Info(msg string, keysAndValues ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.entry(keysAndValues).Debug(l.msg(msg))
}

// Debug logs at debug level.
func (l Leveled) Debug(msg string, keysAndValues ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.entry(keysAndValues).Debug(l.msg(msg))
}
