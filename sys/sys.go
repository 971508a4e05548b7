// Package sys is the low-level ABI for the guest VM. It owns the raw
// gopher-lua state and exposes the fixed set of primitives the rest of the
// runtime is built on: open/close, symbol interning, class definition,
// raise-with-class-and-message, compile-and-execute, and a user data slot
// for the host back-reference.
//
// Nothing above this package is supposed to reach into *lua.LState
// directly; the exported handle types are the boundary.
package sys

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Value is a guest VM value. It aliases the underlying engine's value type
// so that handles can cross the sys boundary without copying.
type Value = lua.LValue

// Sym is an interned symbol handle. Symbols are stable for the lifetime of
// the VM that interned them. The zero Sym is invalid.
type Sym uint32

// ClassHandle is an opaque reference to a guest-visible class.
type ClassHandle = *lua.LTable

// ModuleHandle is an opaque reference to a guest-visible module.
type ModuleHandle = *lua.LTable

// Nil is the guest VM's nil value.
var Nil = lua.LNil

// Names of guest-resident bookkeeping slots. These live in the guest global
// table so the guest garbage collector keeps them alive for the lifetime of
// the VM.
const (
	userDataSlot  = "__okra_host"
	symsByNameKey = "__okra_syms"
	symsByIDKey   = "__okra_sym_names"
)

// ---------------------------------------------------------------------------
// VM: raw guest VM handle
// ---------------------------------------------------------------------------

// Options configures a new VM.
type Options struct {
	// RegistrySize is the initial guest registry size. Zero means the
	// engine default.
	RegistrySize int
	// CallStackSize is the guest call stack size. Zero means the engine
	// default.
	CallStackSize int
}

// VM wraps a raw guest VM handle. A nil or closed VM rejects every
// operation; callers are expected to check Closed where the result matters.
type VM struct {
	l          *lua.LState
	symsByName *lua.LTable // symbol name -> id
	symsByID   *lua.LTable // id -> symbol name
	nextSym    Sym
}

// CompileCtx carries compile-time state shared across compilations,
// currently the filename attributed to compiled chunks. It is created
// alongside the VM and freed by Close.
type CompileCtx struct {
	Filename string
}

// Open creates a VM and its compile context with full guest stdlib loaded.
func Open(opts Options) (*VM, *CompileCtx) {
	lopts := lua.Options{}
	if opts.RegistrySize > 0 {
		lopts.RegistrySize = opts.RegistrySize
	}
	if opts.CallStackSize > 0 {
		lopts.CallStackSize = opts.CallStackSize
	}
	l := lua.NewState(lopts)

	vm := &VM{
		l:          l,
		symsByName: l.NewTable(),
		symsByID:   l.NewTable(),
		nextSym:    1,
	}
	// Anchor the symbol tables in the guest heap.
	l.SetGlobal(symsByNameKey, vm.symsByName)
	l.SetGlobal(symsByIDKey, vm.symsByID)

	return vm, &CompileCtx{Filename: "(eval)"}
}

// Close frees the guest VM and every object resident in its heap.
// Idempotent.
func (vm *VM) Close() {
	if vm.l == nil {
		return
	}
	vm.l.Close()
	vm.l = nil
	vm.symsByName = nil
	vm.symsByID = nil
}

// Closed reports whether the VM handle has been freed.
func (vm *VM) Closed() bool {
	return vm.l == nil
}

// Describe returns a one-line summary of the VM for diagnostics.
func (vm *VM) Describe() string {
	if vm.Closed() {
		return "guest vm (closed)"
	}
	return fmt.Sprintf("guest vm (open, %d interned symbols)", int(vm.nextSym)-1)
}

// ---------------------------------------------------------------------------
// User data slot
// ---------------------------------------------------------------------------

// SetUserData stores a host value in the VM's user data slot. The slot holds
// the back-reference from the guest heap to the host state; it is freed with
// the rest of the heap when the VM closes.
func (vm *VM) SetUserData(v interface{}) {
	if vm.Closed() {
		return
	}
	ud := vm.l.NewUserData()
	ud.Value = v
	vm.l.SetGlobal(userDataSlot, ud)
}

// UserData returns the value stored in the user data slot, or nil.
func (vm *VM) UserData() interface{} {
	if vm.Closed() {
		return nil
	}
	if ud, ok := vm.l.GetGlobal(userDataSlot).(*lua.LUserData); ok {
		return ud.Value
	}
	return nil
}

// HostState recovers the host value from a raw engine state. It is the
// entry-point helper for native functions, which receive the raw state from
// the engine rather than a *VM.
func HostState(l *lua.LState) interface{} {
	if ud, ok := l.GetGlobal(userDataSlot).(*lua.LUserData); ok {
		return ud.Value
	}
	return nil
}

// ---------------------------------------------------------------------------
// Symbol interning
// ---------------------------------------------------------------------------

// Intern returns the symbol handle for name, creating it on first use.
// Interning the same byte sequence twice yields the same handle.
func (vm *VM) Intern(name []byte) Sym {
	if vm.Closed() {
		return 0
	}
	key := string(name)
	if id := vm.symsByName.RawGetString(key); id != lua.LNil {
		return Sym(lua.LVAsNumber(id))
	}
	id := vm.nextSym
	vm.nextSym++
	vm.symsByName.RawSetString(key, lua.LNumber(id))
	vm.symsByID.RawSetInt(int(id), lua.LString(key))
	return id
}

// SymbolName returns the name a symbol was interned under, or nil for an
// unknown handle.
func (vm *VM) SymbolName(sym Sym) []byte {
	if vm.Closed() || sym == 0 {
		return nil
	}
	name := vm.symsByID.RawGetInt(int(sym))
	if name == lua.LNil {
		return nil
	}
	return []byte(lua.LVAsString(name))
}

// NewString allocates a guest string value holding b.
func (vm *VM) NewString(b []byte) Value {
	return lua.LString(b)
}

// ---------------------------------------------------------------------------
// Class and module definition
// ---------------------------------------------------------------------------

// DefineClass creates a guest-visible class bound to the global name. The
// class is a table carrying its display name and superclass link; instances
// and subclasses resolve missing keys through the superclass chain.
func (vm *VM) DefineClass(name string, super ClassHandle) ClassHandle {
	if vm.Closed() {
		return nil
	}
	l := vm.l
	cls := l.NewTable()
	cls.RawSetString("name", lua.LString(name))
	if super != nil {
		cls.RawSetString("super", super)
		mt := l.NewTable()
		mt.RawSetString("__index", super)
		l.SetMetatable(cls, mt)
	}
	cls.RawSetString("new", l.NewFunction(classNew))
	l.SetGlobal(name, cls)
	return cls
}

// DefineModule creates a guest-visible module bound to the global name.
func (vm *VM) DefineModule(name string) ModuleHandle {
	if vm.Closed() {
		return nil
	}
	mod := vm.l.NewTable()
	mod.RawSetString("name", lua.LString(name))
	vm.l.SetGlobal(name, mod)
	return mod
}

// classNew is the shared constructor installed on every defined class.
// Instances carry their class and an optional message.
func classNew(l *lua.LState) int {
	cls := l.CheckTable(1)
	msg := l.OptString(2, "")
	if msg == "" {
		msg = lua.LVAsString(cls.RawGetString("name"))
	}
	inst := l.NewTable()
	inst.RawSetString("class", cls)
	inst.RawSetString("message", lua.LString(msg))
	mt := l.NewTable()
	mt.RawSetString("__index", cls)
	l.SetMetatable(inst, mt)
	l.Push(inst)
	return 1
}

// RegisterFunc binds a native function to a guest global name.
func (vm *VM) RegisterFunc(name string, fn lua.LGFunction) {
	if vm.Closed() {
		return
	}
	vm.l.SetGlobal(name, vm.l.NewFunction(fn))
}

// ---------------------------------------------------------------------------
// Raise: non-local control transfer into the guest VM
// ---------------------------------------------------------------------------

// Raise builds a guest exception value from class and message and performs
// the guest's non-local transfer. Control leaves this call and resumes at
// the nearest protected call boundary (Execute); it never returns to the
// caller. Raise must only be invoked from inside a guest->host native call,
// where the engine has a live boundary to land on.
func (vm *VM) Raise(class ClassHandle, message Value) {
	l := vm.l
	exc := l.NewTable()
	exc.RawSetString("class", class)
	exc.RawSetString("message", message)
	l.Error(exc, 1)
	panic("sys: guest raise returned")
}

// ---------------------------------------------------------------------------
// Compile and execute
// ---------------------------------------------------------------------------

// Compile parses code into a callable chunk. The chunk is attributed to the
// compile context's current filename in guest diagnostics.
func (vm *VM) Compile(cc *CompileCtx, code []byte) (*lua.LFunction, error) {
	if vm.Closed() {
		return nil, fmt.Errorf("sys: compile on closed vm")
	}
	return vm.l.Load(strings.NewReader(string(code)), cc.Filename)
}

// Execute runs a compiled chunk under a protected call boundary. A guest
// raise lands here and comes back as an ordinary error; the returned error
// is always a *lua.ApiError when non-nil.
func (vm *VM) Execute(fn *lua.LFunction) (Value, error) {
	if vm.Closed() {
		return lua.LNil, fmt.Errorf("sys: execute on closed vm")
	}
	if err := vm.l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return lua.LNil, err
	}
	ret := vm.l.Get(-1)
	vm.l.Pop(1)
	return ret, nil
}

// ExecuteUnchecked runs a compiled chunk without a protected boundary. A
// guest raise propagates past this call toward the nearest enclosing
// Execute; only safe when the caller is nested inside one.
func (vm *VM) ExecuteUnchecked(fn *lua.LFunction) Value {
	if vm.Closed() {
		return lua.LNil
	}
	_ = vm.l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: false})
	ret := vm.l.Get(-1)
	vm.l.Pop(1)
	return ret
}
