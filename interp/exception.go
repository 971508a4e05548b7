package interp

import (
	_ "embed"
	"fmt"
	"runtime/debug"

	"github.com/okralang/okra/sys"
)

// ---------------------------------------------------------------------------
// Builtin exception hierarchy
//
// Exception
// +- NoMemoryError
// +- ScriptError -> LoadError, NotImplementedError, SyntaxError
// +- SecurityError
// +- SignalException -> Interrupt
// +- StandardError -> ArgumentError -> UncaughtThrowError
// |                -> EncodingError, FiberError
// |                -> IOError -> EOFError
// |                -> IndexError -> KeyError, StopIteration
// |                -> LocalJumpError
// |                -> NameError -> NoMethodError
// |                -> RangeError -> FloatDomainError
// |                -> RegexpError
// |                -> RuntimeError -> FrozenError
// |                -> SystemCallError
// |                -> ThreadError, TypeError, ZeroDivisionError
// +- SystemExit
// +- SystemStackError
// +- fatal   (terminal; not intended to be caught)
// ---------------------------------------------------------------------------

// exceptionBlob is guest source loaded verbatim after the hierarchy is
// defined. The host only checks that it evaluates cleanly.
//
//go:embed exception.lua
var exceptionBlob []byte

// builtinExceptions lists every node of the hierarchy in definition order:
// parents strictly precede children.
var builtinExceptions = []struct {
	tag   Tag
	name  string
	super Tag
}{
	{TagException, "Exception", TagNone},
	{TagNoMemoryError, "NoMemoryError", TagException},
	{TagScriptError, "ScriptError", TagException},
	{TagLoadError, "LoadError", TagScriptError},
	{TagNotImplementedError, "NotImplementedError", TagScriptError},
	{TagSyntaxError, "SyntaxError", TagScriptError},
	{TagSecurityError, "SecurityError", TagException},
	{TagSignalException, "SignalException", TagException},
	{TagInterrupt, "Interrupt", TagSignalException},
	{TagStandardError, "StandardError", TagException},
	{TagArgumentError, "ArgumentError", TagStandardError},
	{TagUncaughtThrowError, "UncaughtThrowError", TagArgumentError},
	{TagEncodingError, "EncodingError", TagStandardError},
	{TagFiberError, "FiberError", TagStandardError},
	{TagIOError, "IOError", TagStandardError},
	{TagEOFError, "EOFError", TagIOError},
	{TagIndexError, "IndexError", TagStandardError},
	{TagKeyError, "KeyError", TagIndexError},
	{TagStopIteration, "StopIteration", TagIndexError},
	{TagLocalJumpError, "LocalJumpError", TagStandardError},
	{TagNameError, "NameError", TagStandardError},
	{TagNoMethodError, "NoMethodError", TagNameError},
	{TagRangeError, "RangeError", TagStandardError},
	{TagFloatDomainError, "FloatDomainError", TagRangeError},
	{TagRegexpError, "RegexpError", TagStandardError},
	{TagRuntimeError, "RuntimeError", TagStandardError},
	{TagFrozenError, "FrozenError", TagRuntimeError},
	{TagSystemCallError, "SystemCallError", TagStandardError},
	{TagThreadError, "ThreadError", TagStandardError},
	{TagTypeError, "TypeError", TagStandardError},
	{TagZeroDivisionError, "ZeroDivisionError", TagStandardError},
	{TagSystemExit, "SystemExit", TagException},
	{TagSystemStackError, "SystemStackError", TagException},
	{TagFatal, "fatal", TagException},
}

// InitExceptions builds the builtin exception hierarchy: one guest class per
// node, registered under its fixed tag, plus the guest-side convenience
// blob. Idempotent: if the root Exception is already registered the whole
// call is a no-op, so independent initialization sites may all call it.
func InitExceptions(s *State) error {
	if s.Closed() {
		return ErrClosed
	}
	if _, ok := s.ClassSpec(TagException); ok {
		return nil
	}
	for _, e := range builtinExceptions {
		s.DefClass(e.tag, NewClassSpec(e.name, e.super, TagNone))
	}
	if _, err := s.EvalWithContext(exceptionBlob, NewContext("exception.lua")); err != nil {
		return fmt.Errorf("interp: exception bootstrap blob: %w", err)
	}
	log.Debug("patched exception hierarchy onto interpreter")
	return nil
}

// ---------------------------------------------------------------------------
// Host-side exception values
// ---------------------------------------------------------------------------

// GuestException is the capability set a value needs to be raised into the
// guest: message bytes, display name, and the guest class handle. Name and
// Class are resolved through the registry at call time, so they reflect the
// live registry state.
type GuestException interface {
	Message() []byte
	Name() string
	Class() sys.ClassHandle
}

// Exc is an exception value bound to a builtin (or embedder-registered)
// class tag. It is the one concrete GuestException implementation; the
// per-kind constructors below differ only in tag.
type Exc struct {
	state   *State
	tag     Tag
	message []byte
	trace   []byte
}

// NewException creates an exception value for tag with the given message.
// The message is copied into an owned buffer. When the interpreter was
// opened with trace capture enabled, the host stack is recorded as well.
func NewException(s *State, tag Tag, message string) *Exc {
	e := &Exc{state: s, tag: tag, message: []byte(message)}
	if s != nil && s.captureTraces {
		e.trace = debug.Stack()
	}
	return e
}

// Message returns the exception message bytes.
func (e *Exc) Message() []byte { return e.message }

// Name returns the display name of the exception's class, resolved via the
// registry. Empty if the tag was never registered.
func (e *Exc) Name() string {
	if e.state == nil {
		return ""
	}
	if spec, ok := e.state.ClassSpec(e.tag); ok {
		return spec.Name()
	}
	return ""
}

// Class returns the guest class handle for the exception's kind, or nil if
// the tag was never registered.
func (e *Exc) Class() sys.ClassHandle {
	if e.state == nil {
		return nil
	}
	if spec, ok := e.state.ClassSpec(e.tag); ok {
		return spec.Class()
	}
	return nil
}

// Trace returns the captured host stack, or nil when trace capture was
// disabled.
func (e *Exc) Trace() []byte { return e.trace }

// Constructors for the kinds native functions commonly raise.

func NewArgumentError(s *State, message string) *Exc {
	return NewException(s, TagArgumentError, message)
}

func NewIndexError(s *State, message string) *Exc {
	return NewException(s, TagIndexError, message)
}

func NewKeyError(s *State, message string) *Exc {
	return NewException(s, TagKeyError, message)
}

func NewLoadError(s *State, message string) *Exc {
	return NewException(s, TagLoadError, message)
}

func NewNotImplementedError(s *State, message string) *Exc {
	return NewException(s, TagNotImplementedError, message)
}

func NewRangeError(s *State, message string) *Exc {
	return NewException(s, TagRangeError, message)
}

func NewRegexpError(s *State, message string) *Exc {
	return NewException(s, TagRegexpError, message)
}

func NewRuntimeError(s *State, message string) *Exc {
	return NewException(s, TagRuntimeError, message)
}

func NewSyntaxError(s *State, message string) *Exc {
	return NewException(s, TagSyntaxError, message)
}

func NewTypeError(s *State, message string) *Exc {
	return NewException(s, TagTypeError, message)
}

func NewZeroDivisionError(s *State, message string) *Exc {
	return NewException(s, TagZeroDivisionError, message)
}

func NewFatal(s *State, message string) *Exc {
	return NewException(s, TagFatal, message)
}
