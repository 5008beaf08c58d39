package signal

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/anon-signal/memberproof/circuit"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
)

// Variant selects which statement a built circuit proves.
type Variant int

const (
	// SemaphoreVariant proves membership in a capped Wide4 tree and
	// publishes a per-context nullifier (circuit.MembershipCircuit).
	SemaphoreVariant Variant = iota
	// TornadoVariant proves membership in a fixed-depth single-wide tree
	// under a shared topic (circuit.WithdrawCircuit).
	TornadoVariant
)

func (v Variant) String() string {
	switch v {
	case SemaphoreVariant:
		return "semaphore"
	case TornadoVariant:
		return "tornado"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ProverKey is a compiled circuit together with its Groth16 proving and
// verifying keys, built once per (variant, height, capHeight) and reused by
// every Emit call of that shape.
type ProverKey struct {
	Variant   Variant
	Height    int
	CapHeight int
	CCS       constraint.ConstraintSystem
	PK        groth16.ProvingKey
	VK        groth16.VerifyingKey
}

// VerifierKey is the verifier-only view of a ProverKey.
type VerifierKey struct {
	Variant   Variant
	Height    int
	CapHeight int
	VK        groth16.VerifyingKey
}

type buildCacheKey struct {
	Variant   Variant
	Height    int
	CapHeight int
}

// buildCache holds one compiled circuit + key pair per shape, so later
// calls for the same shape reuse it without re-running groth16.Setup.
// Concurrent first calls for one shape may each run Setup; only the first
// stored result is kept and returned to all of them.
var buildCache sync.Map // buildCacheKey -> *ProverKey

// BuildCircuit compiles (or returns the cached) MembershipCircuit for the
// given total height and cap height, running a single-party dev setup.
// Production deployments should use a ceremony-derived key pair instead
// (see setup.go); BuildCircuit is the fast path for tests and development.
func BuildCircuit(height, capHeight int) (*ProverKey, error) {
	if height < 1 {
		return nil, fmt.Errorf("%w: height must be >= 1, got %d", ErrBadArgument, height)
	}
	if capHeight < 0 || capHeight > height {
		return nil, fmt.Errorf("%w: cap height %d out of range for height %d", ErrBadArgument, capHeight, height)
	}
	return buildAndCache(buildCacheKey{SemaphoreVariant, height, capHeight}, func() frontend.Circuit {
		return circuit.NewMembershipCircuit(height, capHeight)
	})
}

// BuildWithdrawCircuit compiles (or returns the cached) WithdrawCircuit for
// the given fixed tree depth.
func BuildWithdrawCircuit(depth int) (*ProverKey, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth must be >= 1, got %d", ErrBadArgument, depth)
	}
	return buildAndCache(buildCacheKey{TornadoVariant, depth, 0}, func() frontend.Circuit {
		return circuit.NewWithdrawCircuit(depth)
	})
}

func buildAndCache(key buildCacheKey, newCircuit func() frontend.Circuit) (*ProverKey, error) {
	if cached, ok := buildCache.Load(key); ok {
		return cached.(*ProverKey), nil
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, newCircuit())
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s circuit: %v", ErrBadArgument, key.Variant, err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("%w: groth16 setup: %v", ErrProofGeneration, err)
	}

	built := &ProverKey{
		Variant:   key.Variant,
		Height:    key.Height,
		CapHeight: key.CapHeight,
		CCS:       ccs,
		PK:        pk,
		VK:        vk,
	}

	actual, _ := buildCache.LoadOrStore(key, built)
	return actual.(*ProverKey), nil
}

// VerifierKey strips the proving key, keeping only what Verify needs.
func (pk *ProverKey) VerifierKey() *VerifierKey {
	return &VerifierKey{Variant: pk.Variant, Height: pk.Height, CapHeight: pk.CapHeight, VK: pk.VK}
}

// Signal is a Semaphore-variant membership proof: a context-bound
// nullifier and the proof that it was derived from a leaf of the access
// set without revealing which one.
type Signal struct {
	Nullifier field.Digest
	Proof     groth16.Proof
}

// Emit proves that id's commitment is the leaf at index in accessSet, and
// publishes nullify(id.S1, ctx) as the signal's nullifier. accessSet's
// shape must match pk's (same height and cap height) since the compiled
// circuit's sibling-slice length is fixed at compile time.
func Emit(pk *ProverKey, id Identity, ctx field.Digest, accessSet *merkleset.AccessSet, index int) (*Signal, error) {
	if pk.Variant != SemaphoreVariant {
		return nil, fmt.Errorf("%w: prover key is a %s key, not semaphore", ErrBadArgument, pk.Variant)
	}
	if accessSet.Height() != pk.Height || accessSet.CapHeight() != pk.CapHeight {
		return nil, fmt.Errorf("%w: access set shape (height=%d capHeight=%d) does not match prover key (height=%d capHeight=%d)",
			ErrBadArgument, accessSet.Height(), accessSet.CapHeight(), pk.Height, pk.CapHeight)
	}

	path, err := accessSet.Open(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}

	leaf := Commit(id)
	if !path.Verify(leaf, index, accessSet.RootCap()) {
		return nil, fmt.Errorf("%w: identity commitment does not open to the claimed leaf", ErrWitnessGapOrConflict)
	}

	nullifier := Nullify(id, ctx)
	cap := accessSet.RootCap()

	assignment := circuit.MembershipCircuit{
		Cap:       make([]circuit.Wide4, len(cap)),
		Nullifier: field.Witness(nullifier),
		Context:   field.Witness(ctx),
		S1:        field.Witness(id.S1),
		S2:        field.Witness(id.S2),
		Index:     big.NewInt(int64(index)),
		Siblings:  make([]circuit.Wide4, len(path.Siblings)),
	}
	for i, c := range cap {
		assignment.Cap[i] = field.Witness(c)
	}
	for i, s := range path.Siblings {
		assignment.Siblings[i] = field.Witness(s)
	}

	w, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: build witness: %v", ErrWitnessGapOrConflict, err)
	}

	proof, err := groth16.Prove(pk.CCS, pk.PK, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}

	return &Signal{Nullifier: nullifier, Proof: proof}, nil
}

// Verify checks sig against ctx and the given cap row. It returns a single
// boolean and never a classified failure reason for an invalid proof — per
// the taxonomy's anti-oracle-leakage rule, a forged proof and a malformed
// one are indistinguishable to a caller. A non-nil error means the request
// itself was malformed (wrong cap length, wrong variant) and never reached
// the backend's Verify call.
func Verify(vk *VerifierKey, ctx field.Digest, sig *Signal, cap []field.Digest) (bool, error) {
	if vk.Variant != SemaphoreVariant {
		return false, fmt.Errorf("%w: verifier key is a %s key, not semaphore", ErrBadArgument, vk.Variant)
	}
	if len(cap) != 1<<uint(vk.CapHeight) {
		return false, fmt.Errorf("%w: cap length %d does not match verifier key cap height %d", ErrBadArgument, len(cap), vk.CapHeight)
	}

	assignment := circuit.MembershipCircuit{
		Cap:       make([]circuit.Wide4, len(cap)),
		Nullifier: field.Witness(sig.Nullifier),
		Context:   field.Witness(ctx),
	}
	for i, c := range cap {
		assignment.Cap[i] = field.Witness(c)
	}

	w, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("%w: build public witness: %v", ErrBadArgument, err)
	}

	if err := groth16.Verify(sig.Proof, vk.VK, w); err != nil {
		return false, nil
	}
	return true, nil
}
