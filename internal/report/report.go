// =============================================================================
// internal/report/report.go - Line oriented status report with markers
// =============================================================================
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Status markers
const (
	MarkCreate  = "+"
	MarkUpdate  = "^"
	MarkChange  = ">"
	MarkExists  = "="
	MarkWarning = "?"
	MarkError   = "!"
	MarkDelete  = "-"
)

var markColors = map[string]termenv.ANSIColor{
	MarkCreate:  termenv.ANSIGreen,
	MarkUpdate:  termenv.ANSIYellow,
	MarkChange:  termenv.ANSIBrightBlack,
	MarkWarning: termenv.ANSIMagenta,
	MarkError:   termenv.ANSIRed,
	MarkDelete:  termenv.ANSICyan,
}

// Reporter writes one status line per decision
type Reporter struct {
	out     io.Writer
	errOut  io.Writer
	profile termenv.Profile
	enabled bool
}

// New creates a reporter writing plain text lines to out and errors to errOut
func New(out, errOut io.Writer) *Reporter {
	return &Reporter{out: out, errOut: errOut, profile: termenv.Ascii, enabled: true}
}

// NewConsole creates a reporter on stdout and stderr, colored when the
// terminal supports it
func NewConsole() *Reporter {
	r := New(os.Stdout, os.Stderr)
	r.profile = termenv.NewOutput(os.Stdout).EnvColorProfile()
	return r
}

// Discard returns a reporter that prints nothing
func Discard() *Reporter {
	return &Reporter{out: io.Discard, errOut: io.Discard, profile: termenv.Ascii}
}

// SetEnabled toggles output. Errors are still written to the error stream.
func (r *Reporter) SetEnabled(enabled bool) {
	r.enabled = enabled
}

func (r *Reporter) line(w io.Writer, mark, format string, args ...any) {
	text := mark + fmt.Sprintf(format, args...)
	if color, ok := markColors[mark]; ok && r.profile != termenv.Ascii {
		text = termenv.String(text).Foreground(r.profile.Convert(color)).String()
	}
	fmt.Fprintln(w, text)
}

// Create reports a new entry
func (r *Reporter) Create(format string, args ...any) {
	if r.enabled {
		r.line(r.out, MarkCreate, format, args...)
	}
}

// Update reports a modified entry
func (r *Reporter) Update(format string, args ...any) {
	if r.enabled {
		r.line(r.out, MarkUpdate, format, args...)
	}
}

// Change reports a single field change of an update
func (r *Reporter) Change(field, oldValue, newValue string) {
	if r.enabled {
		r.line(r.out, MarkChange, "%s: %s => %s", field, oldValue, newValue)
	}
}

// Exists reports an entry that needs no change
func (r *Reporter) Exists(format string, args ...any) {
	if r.enabled {
		r.line(r.out, MarkExists, format, args...)
	}
}

// Warning reports a record that was skipped
func (r *Reporter) Warning(format string, args ...any) {
	if r.enabled {
		r.line(r.out, MarkWarning, "Warning: "+format, args...)
	}
}

// Delete reports a removed entry
func (r *Reporter) Delete(format string, args ...any) {
	if r.enabled {
		r.line(r.out, MarkDelete, format, args...)
	}
}

// Error reports a failed write on the error stream
func (r *Reporter) Error(format string, args ...any) {
	r.line(r.errOut, MarkError, "Error: "+format, args...)
}

// Printf writes an unmarked line
func (r *Reporter) Printf(format string, args ...any) {
	if r.enabled {
		fmt.Fprintf(r.out, format, args...)
	}
}
