package interp

import (
	"sync/atomic"

	"github.com/okralang/okra/sys"
)

// ---------------------------------------------------------------------------
// Tags: host type identity keys
// ---------------------------------------------------------------------------

// Tag identifies a host-defined type in the class and module registries.
// Tags are process-wide: the builtin exception kinds have fixed tags below,
// and embedders allocate theirs with AllocTag. TagNone is never registered.
type Tag uint32

// TagNone is the absent tag, used for "no superclass" and "not enclosed".
const TagNone Tag = 0

// Builtin exception tags. The numbering is stable but carries no meaning
// beyond identity; hierarchy structure lives in the bootstrap table.
const (
	TagException Tag = iota + 1
	TagNoMemoryError
	TagScriptError
	TagLoadError
	TagNotImplementedError
	TagSyntaxError
	TagSecurityError
	TagSignalException
	TagInterrupt
	TagStandardError
	TagArgumentError
	TagUncaughtThrowError
	TagEncodingError
	TagFiberError
	TagIOError
	TagEOFError
	TagIndexError
	TagKeyError
	TagStopIteration
	TagLocalJumpError
	TagNameError
	TagNoMethodError
	TagRangeError
	TagFloatDomainError
	TagRegexpError
	TagRuntimeError
	TagFrozenError
	TagSystemCallError
	TagThreadError
	TagTypeError
	TagZeroDivisionError
	TagSystemExit
	TagSystemStackError
	TagFatal

	tagBuiltinMax
)

var nextTag atomic.Uint32

func init() {
	nextTag.Store(uint32(tagBuiltinMax))
}

// AllocTag returns a fresh tag for a host-defined type. Tags are never
// reused within a process.
func AllocTag() Tag {
	return Tag(nextTag.Add(1))
}

// ---------------------------------------------------------------------------
// Class and module specifications
// ---------------------------------------------------------------------------

// ClassSpec describes a guest-visible class bound to a host tag: display
// name, optional superclass, optional enclosing module. Specs are created
// once at registration time and are immutable afterwards; the guest class
// handle is bound when the class is defined on a VM.
type ClassSpec struct {
	name      string
	super     Tag
	enclosing Tag
	rclass    sys.ClassHandle
}

// NewClassSpec creates a class specification. super and enclosing may be
// TagNone.
func NewClassSpec(name string, super, enclosing Tag) *ClassSpec {
	return &ClassSpec{name: name, super: super, enclosing: enclosing}
}

// Name returns the class display name.
func (c *ClassSpec) Name() string { return c.name }

// Super returns the tag of the superclass, or TagNone.
func (c *ClassSpec) Super() Tag { return c.super }

// Enclosing returns the tag of the enclosing module, or TagNone.
func (c *ClassSpec) Enclosing() Tag { return c.enclosing }

// Class returns the guest class handle, or nil if the spec was never
// defined on a VM.
func (c *ClassSpec) Class() sys.ClassHandle { return c.rclass }

// ModuleSpec describes a guest-visible module bound to a host tag.
type ModuleSpec struct {
	name      string
	enclosing Tag
	rmodule   sys.ModuleHandle
}

// NewModuleSpec creates a module specification. enclosing may be TagNone.
func NewModuleSpec(name string, enclosing Tag) *ModuleSpec {
	return &ModuleSpec{name: name, enclosing: enclosing}
}

// Name returns the module display name.
func (m *ModuleSpec) Name() string { return m.name }

// Enclosing returns the tag of the enclosing module, or TagNone.
func (m *ModuleSpec) Enclosing() Tag { return m.enclosing }

// Module returns the guest module handle, or nil if the spec was never
// defined on a VM.
func (m *ModuleSpec) Module() sys.ModuleHandle { return m.rmodule }
