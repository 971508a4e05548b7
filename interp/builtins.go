package interp

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/okralang/okra/sys"
)

// ---------------------------------------------------------------------------
// Native functions
// ---------------------------------------------------------------------------

// NativeFunc is a host function callable from guest code. It is the
// designated entry point from which Raise may be invoked: a raise inside fn
// transfers straight to the protected boundary of the enclosing Eval.
type NativeFunc func(s *State, args []sys.Value) sys.Value

// DefFunc binds a native function to a guest global name. The host State is
// recovered through the VM's user data slot at call time.
func (s *State) DefFunc(name string, fn NativeFunc) {
	if s.Closed() {
		return
	}
	s.vm.RegisterFunc(name, func(l *lua.LState) int {
		host, ok := sys.HostState(l).(*State)
		if !ok {
			l.RaiseError("host state is not attached")
			return 0
		}
		args := make([]sys.Value, l.GetTop())
		for i := range args {
			args[i] = l.Get(i + 1)
		}
		ret := fn(host, args)
		if ret == nil {
			ret = sys.Nil
		}
		l.Push(ret)
		return 1
	})
}

// installBuiltins wires the guest-visible natives that route through host
// state: print into the output sink, eval for re-entrant evaluation, rand
// for the optional random feature.
func (s *State) installBuiltins() {
	s.vm.RegisterFunc("print", func(l *lua.LState) int {
		host, ok := sys.HostState(l).(*State)
		if !ok {
			return 0
		}
		parts := make([]string, l.GetTop())
		for i := range parts {
			parts[i] = lua.LVAsString(l.ToStringMeta(l.Get(i + 1)))
		}
		host.Puts(strings.Join(parts, "\t"))
		return 0
	})

	s.DefFunc("eval", func(host *State, args []sys.Value) sys.Value {
		if len(args) == 0 {
			Raise(host, NewArgumentError(host, "eval: missing code argument"))
		}
		val, err := host.Eval([]byte(lua.LVAsString(args[0])))
		if err != nil {
			var ge *GuestError
			if errors.As(err, &ge) {
				Raise(host, NewRuntimeError(host, ge.Message))
			}
			Raise(host, NewRuntimeError(host, err.Error()))
		}
		return val
	})

	s.DefFunc("rand", func(host *State, args []sys.Value) sys.Value {
		if host.prng == nil {
			Raise(host, NewNotImplementedError(host, "random support is not enabled"))
		}
		return lua.LNumber(host.prng.Float64())
	})
}
