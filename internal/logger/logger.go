// Package logger provides verbose logging for deskpilot.
// When verbose mode is enabled via the --verbose flag, debug messages
// trace cache fetches, stale discards and mutation cascades. While the
// dashboard owns the terminal, output goes to a log file instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the log file written while the TUI runs.
const FileName = "deskpilot.log"

var (
	mu         sync.RWMutex
	verbose    bool
	output     io.Writer = os.Stderr
	timestamps bool
	now        = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	timestamps = false
}

// ToFile redirects logs to dir/deskpilot.log, prefixing each line with a
// timestamp. The returned func restores the previous writer and closes
// the file.
func ToFile(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	prev, prevStamps := output, timestamps
	output, timestamps = f, true
	mu.Unlock()

	return func() error {
		mu.Lock()
		output, timestamps = prev, prevStamps
		mu.Unlock()
		return f.Close()
	}, nil
}

// write emits one line (caller must hold the read lock).
func write(prefix, format string, args ...any) {
	if !verbose {
		return
	}
	if timestamps {
		prefix = now().Format("15:04:05.000") + " " + prefix
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("[WARN] ", format, args...)
}
