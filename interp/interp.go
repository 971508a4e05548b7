package interp

import (
	"io"
	"math/rand"
	"time"

	"github.com/okralang/okra/sys"
	"github.com/okralang/okra/vfs"
)

// ---------------------------------------------------------------------------
// Interp: shared-ownership handle
// ---------------------------------------------------------------------------

// Options configures a new interpreter.
type Options struct {
	// CaptureTraces records a host stack trace in every constructed
	// exception value.
	CaptureTraces bool

	// Random enables the interpreter-local random source and the guest
	// rand native.
	Random bool
	// Seed seeds the random source; zero means seed from the clock.
	Seed int64

	// Console receives uncaptured output. Nil means stdout.
	Console io.Writer

	// FS overrides the default in-memory virtual filesystem.
	FS *vfs.FS

	// RegistrySize and CallStackSize tune the guest VM; zero keeps the
	// engine defaults.
	RegistrySize  int
	CallStackSize int
}

// Interp is a shared-ownership handle on a State. The State stays alive
// while any handle holds it; Release drops a reference and tears the State
// down when the last one goes. The guest VM's user data slot carries a
// back-reference to the same State, which is why teardown ordering matters:
// closing frees the guest heap and the back-reference with it.
type Interp struct {
	state *State
}

// New opens a guest VM, attaches a fresh State through the user data slot,
// installs the host-backed natives, and bootstraps the builtin exception
// hierarchy.
func New(opts Options) (*Interp, error) {
	vm, cc := sys.Open(sys.Options{
		RegistrySize:  opts.RegistrySize,
		CallStackSize: opts.CallStackSize,
	})
	s := NewState(vm, cc)
	s.captureTraces = opts.CaptureTraces
	if opts.Random {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.prng = rand.New(rand.NewSource(seed))
	}
	if opts.Console != nil {
		s.console = NewConsole(opts.Console)
	}
	if opts.FS != nil {
		s.fs = opts.FS
	}

	vm.SetUserData(s)
	s.installBuiltins()
	if err := InitExceptions(s); err != nil {
		s.Close()
		return nil, err
	}
	return &Interp{state: s}, nil
}

// State returns the underlying host state.
func (i *Interp) State() *State { return i.state }

// Retain adds an owner. Every Retain must be paired with a Release.
func (i *Interp) Retain() *Interp {
	i.state.owners.Add(1)
	return i
}

// Release drops an owner; the last Release closes the State.
func (i *Interp) Release() {
	if i.state.owners.Add(-1) <= 0 {
		i.state.Close()
	}
}

// Close tears the State down directly. Only valid when this handle is the
// sole owner; embedders juggling multiple holders use Retain and Release
// instead. Idempotent.
func (i *Interp) Close() {
	i.state.Close()
}

// Eval runs code under the default context. See State.Eval.
func (i *Interp) Eval(code []byte) (sys.Value, error) {
	return i.state.Eval(code)
}

// LoadFile evaluates a source file resolved through the VFS.
func (i *Interp) LoadFile(path string) (sys.Value, error) {
	return i.state.LoadFile(path)
}
