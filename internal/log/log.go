//nolint:revive // Package name kept as "log" for stable internal imports.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

var (
	debugMode atomic.Bool

	outMu  sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugMode.Store(enabled)
}

// IsDebug reports whether debug logging is enabled
func IsDebug() bool {
	return debugMode.Load()
}

// SetOutput redirects informational and error output. Nil writers leave the
// current destination unchanged. It returns a function restoring the previous
// writers.
func SetOutput(out, errOut io.Writer) func() {
	outMu.Lock()
	defer outMu.Unlock()

	prevOut, prevErr := stdout, stderr
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
	return func() {
		outMu.Lock()
		stdout, stderr = prevOut, prevErr
		outMu.Unlock()
	}
}

func writeLine(toErr bool, prefix string, format string, elem ...any) {
	line := prefix + fmt.Sprintf(format, elem...)

	outMu.Lock()
	defer outMu.Unlock()
	if toErr {
		fmt.Fprintln(stderr, line)
		return
	}
	fmt.Fprintln(stdout, line)
}

// Debug logs debug messages when debug mode is enabled
func Debug(format string, elem ...any) {
	if debugMode.Load() {
		writeLine(false, color.CyanString("[DEBUG] "), format, elem...)
	}
}

// DebugH2 logs indented debug messages when debug mode is enabled
func DebugH2(format string, elem ...any) {
	if debugMode.Load() {
		writeLine(false, color.CyanString("  [DEBUG] "), format, elem...)
	}
}

// DebugH3 logs more indented debug messages when debug mode is enabled
func DebugH3(format string, elem ...any) {
	if debugMode.Load() {
		writeLine(false, color.CyanString("    [DEBUG] "), format, elem...)
	}
}

// Fatal logs an error message and exits the program
func Fatal(args ...interface{}) {
	var message string

	switch len(args) {
	case 0:
		message = "fatal error occurred"
	case 1:
		switch v := args[0].(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
	default:
		if format, ok := args[0].(string); ok && strings.Contains(format, "%") {
			message = fmt.Sprintf(format, args[1:]...)
		} else {
			message = fmt.Sprint(args...)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(message), "\n") {
		writeLine(true, color.RedString("[x] "), "%s", line)
	}
	os.Exit(1)
}

// Error logs an error message to stderr
func Error(format string, elem ...any) {
	writeLine(true, color.RedString("[x] "), format, elem...)
}

// ErrorH2 logs an indented error message to stderr
func ErrorH2(format string, elem ...any) {
	writeLine(true, color.RedString("  [x] "), format, elem...)
}

// Warn logs a warning to stderr
func Warn(format string, elem ...any) {
	writeLine(true, color.YellowString("[!] "), format, elem...)
}

// Info logs an informational message
func Info(format string, elem ...any) {
	writeLine(false, color.BlueString("[x] "), format, elem...)
}

// InfoH2 logs an indented informational message
func InfoH2(format string, elem ...any) {
	writeLine(false, color.GreenString("  [x] "), format, elem...)
}

// InfoH3 logs a double-indented informational message
func InfoH3(format string, elem ...any) {
	writeLine(false, color.YellowString("    [x] "), format, elem...)
}
