package interp

// ---------------------------------------------------------------------------
// Eval context stack
// ---------------------------------------------------------------------------

// TopFilename is the filename attributed to source evaluated without an
// explicit context.
const TopFilename = "(eval)"

// Context describes one unit of source under evaluation. The top of the
// context stack is the currently executing unit and supplies the "current
// file" label in diagnostics.
type Context struct {
	Filename string
}

// NewContext returns a Context for filename, defaulting to TopFilename.
func NewContext(filename string) Context {
	if filename == "" {
		filename = TopFilename
	}
	return Context{Filename: filename}
}

// PushContext makes ctx the current source unit.
func (s *State) PushContext(ctx Context) {
	s.contexts = append(s.contexts, ctx)
}

// PopContext removes the current source unit. Popping an empty stack is a
// no-op.
func (s *State) PopContext() {
	if len(s.contexts) == 0 {
		return
	}
	s.contexts = s.contexts[:len(s.contexts)-1]
}

// PeekContext returns the current source unit without removing it.
func (s *State) PeekContext() (Context, bool) {
	if len(s.contexts) == 0 {
		return Context{}, false
	}
	return s.contexts[len(s.contexts)-1], true
}

// ContextDepth returns the depth of the context stack.
func (s *State) ContextDepth() int {
	return len(s.contexts)
}
