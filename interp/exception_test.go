package interp

import (
	"bytes"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// ---------------------------------------------------------------------------
// Bootstrap tests
// ---------------------------------------------------------------------------

func TestBootstrapRegistersWholeHierarchy(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()
	s := i.State()

	for _, e := range builtinExceptions {
		spec, ok := s.ClassSpec(e.tag)
		if !ok {
			t.Errorf("%s should be registered", e.name)
			continue
		}
		if spec.Name() != e.name {
			t.Errorf("spec name = %q, want %q", spec.Name(), e.name)
		}
		if spec.Class() == nil {
			t.Errorf("%s should have a guest class handle", e.name)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()
	s := i.State()

	before := len(s.classes)
	exception, _ := s.ClassSpec(TagException)

	if err := InitExceptions(s); err != nil {
		t.Fatalf("second InitExceptions: %v", err)
	}
	if len(s.classes) != before {
		t.Errorf("second bootstrap changed registry size: %d -> %d", before, len(s.classes))
	}
	after, _ := s.ClassSpec(TagException)
	if after != exception {
		t.Error("second bootstrap should not replace the root class spec")
	}
}

func TestHierarchyEdges(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()
	s := i.State()

	for _, e := range builtinExceptions {
		if e.super == TagNone {
			continue
		}
		child, _ := s.ClassSpec(e.tag)
		parent, ok := s.ClassSpec(e.super)
		if !ok {
			t.Fatalf("%s: superclass tag %d not registered", e.name, e.super)
		}
		super := child.Class().RawGetString("super")
		if super != lua.LValue(parent.Class()) {
			t.Errorf("%s: guest superclass handle should be %s's", e.name, parent.Name())
		}
	}
}

func TestRootHasNoSuperclass(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()

	root, _ := i.State().ClassSpec(TagException)
	if root.Super() != TagNone {
		t.Error("Exception should have no superclass tag")
	}
	if super := root.Class().RawGetString("super"); super != lua.LNil {
		t.Error("Exception's guest class should have no superclass link")
	}
}

func TestBootstrapBlobIsLoaded(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()

	// Exception.describe comes from the guest-side blob and is inherited
	// down the hierarchy through the superclass chain.
	val, err := i.Eval([]byte(`
		local e = KeyError.new(KeyError, "missing")
		return e.describe(e)
	`))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := lua.LVAsString(val); got != "KeyError: missing" {
		t.Errorf("describe = %q, want %q", got, "KeyError: missing")
	}
}

// ---------------------------------------------------------------------------
// Exception value tests
// ---------------------------------------------------------------------------

func TestExceptionCapabilities(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()
	s := i.State()

	exc := NewRuntimeError(s, "something went wrong")
	if !bytes.Equal(exc.Message(), []byte("something went wrong")) {
		t.Errorf("message = %q", exc.Message())
	}
	if exc.Name() != "RuntimeError" {
		t.Errorf("name = %q, want %q", exc.Name(), "RuntimeError")
	}
	spec, _ := s.ClassSpec(TagRuntimeError)
	if exc.Class() != spec.Class() {
		t.Error("Class should resolve through the registry")
	}
}

func TestNameResolvesLiveRegistryState(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()
	s := i.State()

	exc := NewException(s, TagRuntimeError, "boom")
	if exc.Name() != "RuntimeError" {
		t.Fatalf("name = %q", exc.Name())
	}

	// Re-registering the tag changes what the same exception value reports:
	// name and class are resolved at call time, not cached.
	s.DefClass(TagRuntimeError, NewClassSpec("RenamedError", TagStandardError, TagNone))
	if exc.Name() != "RenamedError" {
		t.Errorf("name after re-registration = %q, want %q", exc.Name(), "RenamedError")
	}
}

func TestUnregisteredKindHasNoCapabilities(t *testing.T) {
	i := mustInterp(t, Options{})
	defer i.Close()

	exc := NewException(i.State(), AllocTag(), "boom")
	if exc.Name() != "" {
		t.Errorf("unregistered kind should have no name, got %q", exc.Name())
	}
	if exc.Class() != nil {
		t.Error("unregistered kind should have no class handle")
	}
}

func TestTraceCaptureFollowsOptions(t *testing.T) {
	plain := mustInterp(t, Options{})
	defer plain.Close()
	if exc := NewRuntimeError(plain.State(), "x"); exc.Trace() != nil {
		t.Error("trace should not be captured by default")
	}

	traced := mustInterp(t, Options{CaptureTraces: true})
	defer traced.Close()
	exc := NewRuntimeError(traced.State(), "x")
	if len(exc.Trace()) == 0 {
		t.Error("trace should be captured when the option is set")
	}
}
