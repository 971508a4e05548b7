package interp

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrClosed is returned by operations that need a live guest VM after the
// State has been closed.
var ErrClosed = errors.New("okra: interpreter is closed")

// GuestError is a guest-raised exception converted back into an ordinary Go
// error at a protected boundary. It carries the resolved class name, the
// message, the context label the error surfaced under, and the guest
// traceback when one was available.
type GuestError struct {
	ClassName string
	Message   string
	File      string
	Trace     string
}

func (e *GuestError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.File, e.Message, e.ClassName)
}

// guestError converts an engine error into a *GuestError, labelled with the
// current eval context.
func (s *State) guestError(err error) *GuestError {
	label := TopFilename
	if ctx, ok := s.PeekContext(); ok {
		label = ctx.Filename
	}

	ge := &GuestError{ClassName: "RuntimeError", File: label}

	var api *lua.ApiError
	if !errors.As(err, &api) {
		ge.Message = err.Error()
		return ge
	}

	ge.Trace = api.StackTrace
	if api.Type == lua.ApiErrorSyntax {
		ge.ClassName = "SyntaxError"
		ge.Message = lua.LVAsString(api.Object)
		return ge
	}

	switch obj := api.Object.(type) {
	case *lua.LTable:
		// A raised exception value: {class = <class table>, message = ...}.
		if cls, ok := obj.RawGetString("class").(*lua.LTable); ok {
			if name := cls.RawGetString("name"); name != lua.LNil {
				ge.ClassName = lua.LVAsString(name)
			}
		}
		ge.Message = lua.LVAsString(obj.RawGetString("message"))
	default:
		ge.Message = lua.LVAsString(api.Object)
	}
	return ge
}
