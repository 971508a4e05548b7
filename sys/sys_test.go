package sys

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// ---------------------------------------------------------------------------
// Lifecycle tests
// ---------------------------------------------------------------------------

func TestOpenAndClose(t *testing.T) {
	vm, cc := Open(Options{})
	if vm.Closed() {
		t.Fatal("freshly opened VM should not be closed")
	}
	if cc == nil || cc.Filename == "" {
		t.Error("compile context should carry a default filename")
	}

	vm.Close()
	if !vm.Closed() {
		t.Error("VM should be closed after Close")
	}

	// Close is idempotent.
	vm.Close()
	if !vm.Closed() {
		t.Error("second Close should leave the VM closed")
	}
}

func TestClosedVMRejectsOperations(t *testing.T) {
	vm, cc := Open(Options{})
	vm.Close()

	if sym := vm.Intern([]byte("name")); sym != 0 {
		t.Errorf("Intern on closed VM should return 0, got %d", sym)
	}
	if cls := vm.DefineClass("Thing", nil); cls != nil {
		t.Error("DefineClass on closed VM should return nil")
	}
	if _, err := vm.Compile(cc, []byte("return 1")); err == nil {
		t.Error("Compile on closed VM should fail")
	}
	if ud := vm.UserData(); ud != nil {
		t.Error("UserData on closed VM should be nil")
	}
}

// ---------------------------------------------------------------------------
// Symbol interning tests
// ---------------------------------------------------------------------------

func TestInternIsStable(t *testing.T) {
	vm, _ := Open(Options{})
	defer vm.Close()

	first := vm.Intern([]byte("example"))
	second := vm.Intern([]byte("example"))
	if first == 0 {
		t.Fatal("Intern should return a non-zero handle")
	}
	if first != second {
		t.Errorf("interning the same bytes twice should return the same handle: %d != %d", first, second)
	}

	other := vm.Intern([]byte("other"))
	if other == first {
		t.Error("distinct byte sequences should intern to distinct handles")
	}

	if got := string(vm.SymbolName(first)); got != "example" {
		t.Errorf("SymbolName = %q, want %q", got, "example")
	}
	if vm.SymbolName(9999) != nil {
		t.Error("SymbolName for an unknown handle should be nil")
	}
}

// ---------------------------------------------------------------------------
// User data slot tests
// ---------------------------------------------------------------------------

func TestUserDataSlot(t *testing.T) {
	vm, _ := Open(Options{})
	defer vm.Close()

	type host struct{ n int }
	h := &host{n: 7}
	vm.SetUserData(h)

	got, ok := vm.UserData().(*host)
	if !ok || got != h {
		t.Errorf("UserData = %v, want the stored host value", vm.UserData())
	}
}

// ---------------------------------------------------------------------------
// Class definition tests
// ---------------------------------------------------------------------------

func TestDefineClassHierarchy(t *testing.T) {
	vm, cc := Open(Options{})
	defer vm.Close()

	base := vm.DefineClass("Base", nil)
	derived := vm.DefineClass("Derived", base)
	if base == nil || derived == nil {
		t.Fatal("DefineClass should return class handles")
	}

	if super := derived.RawGetString("super"); super != lua.LValue(base) {
		t.Error("derived class should link to its superclass")
	}
	if name := lua.LVAsString(base.RawGetString("name")); name != "Base" {
		t.Errorf("class name = %q, want %q", name, "Base")
	}

	// Classes are bound as guest globals; new constructs an instance whose
	// message defaults to the class name.
	fn, err := vm.Compile(cc, []byte(`local e = Derived.new(Derived) return e.message`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	val, err := vm.Execute(fn)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if lua.LVAsString(val) != "Derived" {
		t.Errorf("default instance message = %q, want %q", lua.LVAsString(val), "Derived")
	}
}

// ---------------------------------------------------------------------------
// Raise and protected execution tests
// ---------------------------------------------------------------------------

func TestRaiseLandsAtProtectedBoundary(t *testing.T) {
	vm, cc := Open(Options{})
	defer vm.Close()

	cls := vm.DefineClass("Boom", nil)
	vm.RegisterFunc("boom", func(l *lua.LState) int {
		vm.Raise(cls, lua.LString("bad"))
		return 0
	})

	fn, err := vm.Compile(cc, []byte("boom()"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = vm.Execute(fn)
	if err == nil {
		t.Fatal("raise inside a native should surface as an execute error")
	}

	api, ok := err.(*lua.ApiError)
	if !ok {
		t.Fatalf("error should be *lua.ApiError, got %T", err)
	}
	exc, ok := api.Object.(*lua.LTable)
	if !ok {
		t.Fatalf("raised object should be a table, got %s", api.Object.Type())
	}
	if exc.RawGetString("class") != lua.LValue(cls) {
		t.Error("raised object should carry the raising class")
	}
	if lua.LVAsString(exc.RawGetString("message")) != "bad" {
		t.Errorf("raised message = %q, want %q", lua.LVAsString(exc.RawGetString("message")), "bad")
	}
}

func TestExecuteReturnsValue(t *testing.T) {
	vm, cc := Open(Options{})
	defer vm.Close()

	tests := []struct {
		code string
		want string
	}{
		{"return 1 + 2", "3"},
		{"return 'a' .. 'b'", "ab"},
		{"local x = 10 return x * x", "100"},
	}

	for _, tc := range tests {
		fn, err := vm.Compile(cc, []byte(tc.code))
		if err != nil {
			t.Fatalf("compile %q: %v", tc.code, err)
		}
		val, err := vm.Execute(fn)
		if err != nil {
			t.Fatalf("execute %q: %v", tc.code, err)
		}
		if got := lua.LVAsString(val); got != tc.want {
			t.Errorf("execute %q = %q, want %q", tc.code, got, tc.want)
		}
	}
}
