package interp

import (
	"io"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// Output sink: console vs. in-memory capture
// ---------------------------------------------------------------------------

// Console is the process-wide output target used when no capture is active.
type Console interface {
	Write(s string)
}

type stdoutConsole struct{}

func (stdoutConsole) Write(s string) {
	io.WriteString(os.Stdout, s)
	os.Stdout.Sync()
}

// writerConsole adapts an io.Writer into a Console. Used by the CLI and by
// tests that need to observe uncaptured output.
type writerConsole struct{ w io.Writer }

func (c writerConsole) Write(s string) { io.WriteString(c.w, s) }

// NewConsole wraps w as the interpreter's console target.
func NewConsole(w io.Writer) Console { return writerConsole{w: w} }

// SetConsole replaces the console target.
func (s *State) SetConsole(c Console) {
	if c != nil {
		s.console = c
	}
}

// CaptureOutput starts diverting Print and Puts into an in-memory buffer.
// Starting a capture while one is active resets the buffer.
func (s *State) CaptureOutput() {
	s.captured = &strings.Builder{}
}

// GetAndClearCapturedOutput drains and resets the capture buffer. Draining
// while no capture is active returns the empty string.
func (s *State) GetAndClearCapturedOutput() string {
	if s.captured == nil {
		return ""
	}
	out := s.captured.String()
	s.captured.Reset()
	return out
}

// Print writes text to the capture buffer when capturing, otherwise to the
// console, flushing immediately.
func (s *State) Print(text string) {
	if s.captured != nil {
		s.captured.WriteString(text)
		return
	}
	s.console.Write(text)
}

// Puts writes text and a trailing newline.
func (s *State) Puts(text string) {
	s.Print(text)
	s.Print("\n")
}
