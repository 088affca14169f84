// Package output handles CLI output formatting including verbose mode,
// status labels and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Status labels one line of per-attachment output.
type Status string

const (
	StatusRenamed Status = "RENAMED"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
	StatusDryRun  Status = "DRY-RUN"
)

var statusStyles = map[Status]lipgloss.Style{
	StatusRenamed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}),
	StatusSkipped: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}),
	StatusFailed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}),
	StatusDryRun:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}),
}

// labelWidth pads labels so messages line up.
const labelWidth = 8

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config          Config
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressMu      sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config writing to stdout and stderr with TTY
// detection.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, fmt.Sprintf(format, args...))
}

// Status prints a message prefixed with a status label. Labels are
// colored on terminals only.
func (o *Output) Status(status Status, format string, args ...interface{}) {
	w := o.config.Writer
	if status == StatusFailed {
		w = o.config.ErrWriter
	}
	o.println(w, o.label(status)+" "+fmt.Sprintf(format, args...))
}

func (o *Output) label(status Status) string {
	text := fmt.Sprintf("%-*s", labelWidth, string(status))
	if !o.config.IsTTY {
		return text
	}
	if style, ok := statusStyles[status]; ok {
		return style.Render(text)
	}
	return text
}

func (o *Output) println(w io.Writer, msg string) {
	o.clearProgressLine()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// clearProgressLine clears the current progress line if active.
func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}

// StartProgress begins a progress indicator session.
func (o *Output) StartProgress(total int) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress updates the progress indicator.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	progressMsg := fmt.Sprintf("\rRenaming attachment %d/%d...", current, o.progressTotal)
	if message != "" {
		progressMsg = fmt.Sprintf("\r%s %d/%d...", message, current, o.progressTotal)
	}
	fmt.Fprint(o.config.Writer, progressMsg)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// Writer returns the standard output destination.
func (o *Output) Writer() io.Writer {
	return o.config.Writer
}

// IsTTY returns whether output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
