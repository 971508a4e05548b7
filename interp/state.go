// Package interp is the host side of the Okra runtime: it owns the guest VM
// handle, maps host tags to guest-visible classes and modules, bridges guest
// raises back into ordinary Go errors, and tracks eval contexts across
// nested source loading.
package interp

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/okralang/okra/sys"
	"github.com/okralang/okra/vfs"
)

var log = commonlog.GetLogger("okra.interp")

// ---------------------------------------------------------------------------
// State: per-interpreter host state
// ---------------------------------------------------------------------------

// State aggregates everything the host keeps per interpreter: the guest VM
// handle, the compile context, the class and module registries, the symbol
// cache, and the eval context stack.
//
// NOTE: a State is also reachable from the guest VM's user data slot, which
// is how native functions recover it. Close must therefore only run when
// the host-side handle is the last remaining owner; see Interp.
//
// The guest VM is single-threaded by assumption and so is State: no locking
// here, none required.
type State struct {
	vm *sys.VM
	cc *sys.CompileCtx

	classes map[Tag]*ClassSpec
	modules map[Tag]*ModuleSpec

	symCache map[string]sys.Sym

	contexts []Context

	fs *vfs.FS

	// ActiveRegexpGlobals counts regexp match globals currently live in the
	// guest, maintained by the regexp bindings.
	activeRegexpGlobals int

	captured *strings.Builder // non-nil while capturing output
	console  Console

	prng *rand.Rand // non-nil when the random feature is enabled

	captureTraces bool

	owners atomic.Int32
}

// NewState creates a State around an open VM and compile context, with an
// in-memory virtual filesystem.
func NewState(vm *sys.VM, cc *sys.CompileCtx) *State {
	s := &State{
		vm:       vm,
		cc:       cc,
		classes:  make(map[Tag]*ClassSpec),
		modules:  make(map[Tag]*ModuleSpec),
		symCache: make(map[string]sys.Sym),
		fs:       vfs.NewMem(),
		console:  stdoutConsole{},
	}
	s.owners.Store(1)
	return s
}

// VM returns the guest VM handle. Nil after Close.
func (s *State) VM() *sys.VM { return s.vm }

// FS returns the virtual filesystem source is resolved through.
func (s *State) FS() *vfs.FS { return s.fs }

// SetFS replaces the virtual filesystem. The CLI swaps in an OS-backed one.
func (s *State) SetFS(fs *vfs.FS) { s.fs = fs }

// Closed reports whether the State has been torn down.
func (s *State) Closed() bool { return s.vm == nil }

// Close tears down the State: frees the compile context, closes the guest
// VM (which frees every guest-heap-resident object, including the user data
// back-reference to this State), and nils both handles. Idempotent.
//
// Close must only run when this State has exactly one remaining owner.
// Closing while other host holders or guest-resident objects still use the
// State leaves them with dangling handles; Interp.Release enforces the
// count.
func (s *State) Close() {
	if s.vm == nil {
		return
	}
	s.cc = nil
	s.vm.Close()
	s.vm = nil
}

// String implements fmt.Stringer with a one-line description of the
// interpreter state.
func (s *State) String() string {
	if s.Closed() {
		return "okra interpreter (closed)"
	}
	return fmt.Sprintf("okra interpreter (%s, %d classes, %d modules)",
		s.vm.Describe(), len(s.classes), len(s.modules))
}

// ---------------------------------------------------------------------------
// Class and module registry
// ---------------------------------------------------------------------------

// DefClass registers a class specification under tag and defines the class
// in the guest. A second registration for the same tag silently replaces
// the first; callers that care should check ClassSpec first.
func (s *State) DefClass(tag Tag, spec *ClassSpec) {
	if s.Closed() || tag == TagNone || spec == nil {
		return
	}
	if spec.rclass == nil {
		var super sys.ClassHandle
		if parent, ok := s.classes[spec.super]; ok {
			super = parent.rclass
		}
		spec.rclass = s.vm.DefineClass(spec.name, super)
	}
	s.classes[tag] = spec
}

// ClassSpec returns the class specification registered under tag.
func (s *State) ClassSpec(tag Tag) (*ClassSpec, bool) {
	spec, ok := s.classes[tag]
	return spec, ok
}

// DefModule registers a module specification under tag and defines the
// module in the guest. Duplicate registration replaces silently, matching
// DefClass.
func (s *State) DefModule(tag Tag, spec *ModuleSpec) {
	if s.Closed() || tag == TagNone || spec == nil {
		return
	}
	if spec.rmodule == nil {
		spec.rmodule = s.vm.DefineModule(spec.name)
	}
	s.modules[tag] = spec
}

// ModuleSpec returns the module specification registered under tag.
func (s *State) ModuleSpec(tag Tag) (*ModuleSpec, bool) {
	spec, ok := s.modules[tag]
	return spec, ok
}

// ---------------------------------------------------------------------------
// Symbol cache
// ---------------------------------------------------------------------------

// SymIntern returns the guest symbol handle for name, interning it in the
// guest on first use and memoizing the result. Handles are stable for the
// interpreter's lifetime; equal byte sequences yield equal handles.
func (s *State) SymIntern(name []byte) sys.Sym {
	key := string(name)
	if sym, ok := s.symCache[key]; ok {
		return sym
	}
	if s.Closed() {
		return 0
	}
	sym := s.vm.Intern(name)
	s.symCache[key] = sym
	return sym
}

// ---------------------------------------------------------------------------
// Misc per-interpreter bookkeeping
// ---------------------------------------------------------------------------

// ActiveRegexpGlobals returns the number of live regexp match globals.
func (s *State) ActiveRegexpGlobals() int { return s.activeRegexpGlobals }

// RetainRegexpGlobals records count additional live regexp match globals.
func (s *State) RetainRegexpGlobals(count int) { s.activeRegexpGlobals += count }

// ReleaseRegexpGlobals records count regexp match globals going dead.
func (s *State) ReleaseRegexpGlobals(count int) {
	if count > s.activeRegexpGlobals {
		s.activeRegexpGlobals = 0
		return
	}
	s.activeRegexpGlobals -= count
}

// Prng returns the interpreter's random source, or nil when the random
// feature is disabled.
func (s *State) Prng() *rand.Rand { return s.prng }
