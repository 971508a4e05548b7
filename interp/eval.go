package interp

import (
	"fmt"

	"github.com/okralang/okra/sys"
)

// ---------------------------------------------------------------------------
// Protected eval
// ---------------------------------------------------------------------------

// Eval compiles and runs code under the default (eval) context. This call
// is the protected boundary for guest raises: an exception signalled
// anywhere below it, including from native functions, comes back as a
// *GuestError and never propagates past this call. Re-entrant calls are
// fine; each balances its own context push and pop.
func (s *State) Eval(code []byte) (sys.Value, error) {
	return s.EvalWithContext(code, NewContext(""))
}

// EvalWithContext is Eval with a caller-supplied source unit context.
func (s *State) EvalWithContext(code []byte, ctx Context) (sys.Value, error) {
	if s.Closed() {
		return sys.Nil, ErrClosed
	}
	s.PushContext(ctx)
	defer s.PopContext()

	s.cc.Filename = ctx.Filename
	fn, err := s.vm.Compile(s.cc, code)
	if err != nil {
		return sys.Nil, s.guestError(err)
	}
	val, err := s.vm.Execute(fn)
	if err != nil {
		return sys.Nil, s.guestError(err)
	}
	return val, nil
}

// UncheckedEval compiles and runs code without converting guest raises: an
// exception continues propagating as a non-local transfer toward the
// nearest enclosing protected boundary. Only safe when the caller is itself
// nested inside one. The context stack stays balanced either way.
func (s *State) UncheckedEval(code []byte) sys.Value {
	if s.Closed() {
		return sys.Nil
	}
	ctx := NewContext("")
	s.PushContext(ctx)
	defer s.PopContext()

	s.cc.Filename = ctx.Filename
	fn, err := s.vm.Compile(s.cc, code)
	if err != nil {
		Raise(s, NewSyntaxError(s, err.Error()))
	}
	return s.vm.ExecuteUnchecked(fn)
}

// LoadFile resolves path through the virtual filesystem and evaluates the
// source with path as the context filename.
func (s *State) LoadFile(path string) (sys.Value, error) {
	if s.Closed() {
		return sys.Nil, ErrClosed
	}
	src, err := s.fs.Source(path)
	if err != nil {
		return sys.Nil, &GuestError{
			ClassName: "LoadError",
			Message:   fmt.Sprintf("cannot load such file -- %s", path),
			File:      path,
		}
	}
	return s.EvalWithContext(src, NewContext(path))
}
