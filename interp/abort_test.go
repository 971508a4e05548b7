package interp

import (
	"errors"
	"os"
	"os/exec"
	"testing"
)

// Raising a kind whose class was never registered is fatal by design: the
// process aborts instead of returning an error. The property is exercised
// in an isolated child process so the abort cannot take the test binary
// down with it.
func TestRaiseUnregisteredKindAbortsProcess(t *testing.T) {
	if os.Getenv("OKRA_RAISE_FATAL_HELPER") == "1" {
		i, err := New(Options{})
		if err != nil {
			os.Exit(99)
		}
		defer i.Close()
		Raise(i.State(), NewException(i.State(), AllocTag(), "boom"))
		// Raise never returns; reaching here is a test failure.
		os.Exit(98)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestRaiseUnregisteredKindAbortsProcess")
	cmd.Env = append(os.Environ(), "OKRA_RAISE_FATAL_HELPER=1")
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("child should terminate abnormally, output: %q", out)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an exit error, got %v", err)
	}
	switch exitErr.ExitCode() {
	case 98:
		t.Error("Raise returned instead of aborting")
	case 99:
		t.Error("helper failed to build an interpreter")
	}
}
