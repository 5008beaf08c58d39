// Package signal is the external façade: building circuits and keys,
// emitting signals, and verifying them.
package signal

import "errors"

// Sentinel error kinds, comparable with errors.Is. Errors from building
// circuits, emitting, withdrawing, verifying and importing keys are wrapped
// around exactly one of these with fmt.Errorf("...: %w", ...) so callers can
// branch on failure class without parsing message text. Serialization
// errors (VerifierKey.Export, fixture JSON marshalling) wrap only the
// underlying error.
var (
	// ErrBadArgument marks a caller mistake caught before any proving-system
	// call: a malformed access set, an out-of-range index, a wrong-length
	// cap, a variant or tree-shape mismatch between key and input.
	ErrBadArgument = errors.New("bad argument")

	// ErrWitnessGapOrConflict marks a witness that cannot be assigned
	// consistently: an assignment the backend cannot turn into a witness, an
	// authentication path that does not open to the claimed leaf.
	ErrWitnessGapOrConflict = errors.New("witness gap or conflict")

	// ErrProofGeneration marks a failure inside the backend's Setup or Prove
	// call, or a proof of an unexpected concrete type.
	ErrProofGeneration = errors.New("proof generation failed")

	// ErrVerification marks a freshly generated proof that the fixture
	// exporters could not verify. Verify itself never returns this: an
	// invalid proof is a false boolean result, not an error, so callers
	// cannot distinguish "forged" from "malformed" (see Verify).
	ErrVerification = errors.New("verification failed")
)
