// Package logging provides leveled, color-coded CLI output. Colors
// respect the --no-color flag and the NO_COLOR environment variable,
// and are automatically disabled when stdout is not a TTY.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

// Logger is a leveled, color-coded writer. The zero value logs at
// normal verbosity; set Verbose to also emit Debugf calls.
type Logger struct {
	Verbose bool
}

// Init configures global color output based on the noColor flag. Call
// once, early in main(), after flag parsing. noColor forces colors off;
// otherwise the NO_COLOR and TTY detection stays in effect.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a green success message with a checkmark prefix.
func (l *Logger) Success(format string, args ...any) {
	_, _ = green.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

// Warn prints a yellow warning message with a warning symbol prefix.
func (l *Logger) Warn(format string, args ...any) {
	_, _ = yellow.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// Error prints a red error message with an X prefix.
func (l *Logger) Error(format string, args ...any) {
	_, _ = red.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// Info prints a cyan informational message with an info symbol prefix.
func (l *Logger) Info(format string, args ...any) {
	_, _ = cyan.Fprintf(os.Stdout, "ℹ "+format+"\n", args...)
}

// Debugf prints only when Verbose is set, dimmed, so -v output stays
// visually distinct from the normal run summary.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	_, _ = dim.Fprintf(os.Stderr, format+"\n", args...)
}

// Header prints a bold header with an underline separator.
func (l *Logger) Header(text string) {
	_, _ = bold.Fprintln(os.Stdout, text)
	fmt.Println(underline(text))
}

func underline(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	for i := range out {
		out[i] = '='
	}
	return string(out)
}

// Label returns a bold-formatted label string for inline use.
func Label(text string) string { return bold.Sprint(text) }

// DimText returns a dim-formatted string for less important text,
// such as file paths in a warning line.
func DimText(text string) string { return dim.Sprint(text) }

// std is the package-level logger used by L, so CLI commands do not
// each need to construct their own Logger.
var std = &Logger{}

// SetVerbose toggles Debugf output on the package-level logger.
func SetVerbose(v bool) { std.Verbose = v }

// L returns the package-level logger.
func L() *Logger { return std }
