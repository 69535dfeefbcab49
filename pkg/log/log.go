// Package log provides the leveled logger used across wscat. Console output
// is colored with fatih/color; JSON output goes through zerolog.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	red     = color.New(color.FgRed).FprintfFunc()
	blue    = color.New(color.FgBlue).FprintfFunc()
	yellow  = color.New(color.FgYellow).FprintfFunc()
	magenta = color.New(color.FgMagenta).FprintfFunc()
)

// Logger writes printf-style messages. Verbose and debug messages are only
// emitted when the logger was created with verbose set. A nil *Logger is a
// valid logger that discards everything.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	json    *zerolog.Logger
}

// NewLogger returns a console logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return New(os.Stderr, verbose)
}

// New returns a console logger writing colored lines to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// NewJSON returns a logger emitting one JSON object per message to w.
func NewJSON(w io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(level)
	return &Logger{out: w, verbose: verbose, json: &zl}
}

// IsVerbose reports whether verbose and debug messages are printed.
func (l *Logger) IsVerbose() bool {
	return l != nil && l.verbose
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	if l.json != nil {
		l.json.Error().Msg(line(format, a...))
		return
	}
	l.print(red, "[!] Error: ", format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	if l.json != nil {
		l.json.Info().Msg(line(format, a...))
		return
	}
	l.print(blue, "[+] ", format, a...)
}

// VerboseMsg prints a message only in verbose mode.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if !l.IsVerbose() {
		return
	}
	if l.json != nil {
		l.json.Info().Bool("verbose", true).Msg(line(format, a...))
		return
	}
	l.print(yellow, "[v] ", format, a...)
}

// DebugMsg prints a diagnostic message only in verbose mode.
func (l *Logger) DebugMsg(format string, a ...interface{}) {
	if !l.IsVerbose() {
		return
	}
	if l.json != nil {
		l.json.Debug().Msg(line(format, a...))
		return
	}
	l.print(magenta, "[d] ", format, a...)
}

func (l *Logger) print(colored func(io.Writer, string, ...interface{}), prefix, format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	colored(l.out, "%s%s\n", prefix, line(format, a...))
}

func line(format string, a ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, a...), "\n")
}
