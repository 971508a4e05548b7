package interp

import (
	"os"
)

// Raise converts exc into a guest exception value and performs the guest
// VM's non-local transfer. Control resumes at the nearest protected call
// boundary (Eval / sys.Execute); this function never returns.
//
// Raising a kind whose class was never registered is fatal: the hierarchy
// invariant is already violated, so the process aborts rather than handing
// the guest a class it cannot represent.
//
// Raise may only be invoked from a designated guest->host native entry
// point, never from an arbitrary host call chain: every frame between the
// call site and the boundary is abandoned by the transfer, so callers must
// hold nothing that needs cleanup beyond what their own defers cover.
func Raise(s *State, exc GuestException) {
	rclass := exc.Class()
	if rclass == nil {
		log.Criticalf("unable to raise %q: class not registered", exc.Name())
		os.Exit(1)
	}

	vm := s.vm
	message := vm.NewString(exc.Message())
	// Past this point the state and exception must not be touched; the
	// transfer begins inside Raise and cannot be intercepted.
	vm.Raise(rclass, message)
	panic("okra: guest raise returned")
}
