// Package logging provides the leveled logger shared by the batch driver.
// One Logger is created by the entry point and passed explicitly to every
// component that reports progress.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Level is a log severity.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
)

// Options configures a Logger.
type Options struct {
	File    string // optional append-only log file
	Verbose bool   // enables Debug lines
	Quiet   bool   // suppress console output (file sink only), used by the TUI
	Color   *bool  // nil = auto-detect from stdout

	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// Logger writes timestamped, leveled lines to the console and an optional file.
type Logger struct {
	mu      sync.Mutex
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
	verbose bool
	quiet   bool
	color   bool
	styles  map[Level]lipgloss.Style
}

// New creates a Logger. Call Close when done if Options.File was set.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		verbose: opts.Verbose,
		quiet:   opts.Quiet,
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}
	if l.stderr == nil {
		l.stderr = os.Stderr
	}
	if opts.Color != nil {
		l.color = *opts.Color
	} else {
		l.color = isTerminal(l.stdout) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
	l.styles = levelStyles()

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger {
	return &Logger{stdout: io.Discard, stderr: io.Discard, quiet: true, styles: levelStyles()}
}

func levelStyles() map[Level]lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	return map[Level]lipgloss.Style{
		LevelDebug:   base.Foreground(lipgloss.Color("#22D3EE")),
		LevelInfo:    base.Foreground(lipgloss.Color("#60A5FA")),
		LevelSuccess: base.Foreground(lipgloss.Color("#22C55E")),
		LevelWarn:    base.Foreground(lipgloss.Color("#F59E0B")),
		LevelError:   base.Foreground(lipgloss.Color("#EF4444")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level Level, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + string(level) + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		out := l.stdout
		if level == LevelError {
			out = l.stderr
		}
		if l.color {
			tag := l.styles[level].Render("[" + string(level) + "]")
			_, _ = io.WriteString(out, ts+" "+tag+" "+text+"\n")
		} else {
			_, _ = io.WriteString(out, plain)
		}
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Debug logs only when verbose output was requested.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(LevelInfo, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level; console output goes to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(LevelError, fmt.Sprintf(format, args...))
}
