package signal_test

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"

	"github.com/anon-signal/memberproof/config"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
	"github.com/anon-signal/memberproof/signal"
)

func buildTestAccessSet(t *testing.T, n int, capHeight int) (*merkleset.AccessSet, []signal.Identity) {
	t.Helper()

	identities := make([]signal.Identity, n)
	leaves := make([]field.Digest, n)
	for i := range identities {
		id, err := signal.GenerateIdentity()
		if err != nil {
			t.Fatalf("generate identity %d: %v", i, err)
		}
		identities[i] = id
		leaves[i] = signal.Commit(id)
	}

	set, err := merkleset.NewAccessSet(leaves, capHeight)
	if err != nil {
		t.Fatalf("new access set: %v", err)
	}
	return set, identities
}

func TestEmitAndVerifyRoundTrip(t *testing.T) {
	const n = 8
	const capHeight = 1

	set, identities := buildTestAccessSet(t, n, capHeight)

	pk, err := signal.BuildCircuit(set.Height(), capHeight)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}

	const index = 3
	sig, err := signal.Emit(pk, identities[index], ctx, set, index)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	ok, err := signal.Verify(pk.VerifierKey(), ctx, sig, set.RootCap())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signal to verify")
	}

	expectedNullifier := signal.Nullify(identities[index], ctx)
	if !sig.Nullifier.Equal(expectedNullifier) {
		t.Fatal("published nullifier does not match nullify(s1, ctx)")
	}
}

func TestVerifyRejectsWrongContext(t *testing.T) {
	const n = 4
	set, identities := buildTestAccessSet(t, n, 0)

	pk, err := signal.BuildCircuit(set.Height(), 0)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	otherCtx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random other context: %v", err)
	}

	sig, err := signal.Emit(pk, identities[0], ctx, set, 0)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	ok, err := signal.Verify(pk.VerifierKey(), otherCtx, sig, set.RootCap())
	if err != nil {
		t.Fatalf("verify returned an error instead of a false result: %v", err)
	}
	if ok {
		t.Fatal("signal verified against the wrong context")
	}
}

func TestEmitRejectsMismatchedIdentity(t *testing.T) {
	const n = 4
	set, identities := buildTestAccessSet(t, n, 0)

	pk, err := signal.BuildCircuit(set.Height(), 0)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}

	// identities[1]'s commitment is not the leaf at index 0.
	_, err = signal.Emit(pk, identities[1], ctx, set, 0)
	if !errors.Is(err, signal.ErrWitnessGapOrConflict) {
		t.Fatalf("expected ErrWitnessGapOrConflict, got %v", err)
	}
}

func TestEmitRejectsShapeMismatch(t *testing.T) {
	const n = 4
	set, identities := buildTestAccessSet(t, n, 0)

	pk, err := signal.BuildCircuit(set.Height()+1, 0)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}

	_, err = signal.Emit(pk, identities[0], ctx, set, 0)
	if !errors.Is(err, signal.ErrBadArgument) {
		t.Fatalf("expected ErrBadArgument, got %v", err)
	}
}

func TestEmitRejectsWrongVariant(t *testing.T) {
	pk, err := signal.BuildWithdrawCircuit(4)
	if err != nil {
		t.Fatalf("build withdraw circuit: %v", err)
	}

	set, identities := buildTestAccessSet(t, 4, 0)
	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}

	_, err = signal.Emit(pk, identities[0], ctx, set, 0)
	if !errors.Is(err, signal.ErrBadArgument) {
		t.Fatalf("expected ErrBadArgument for a tornado key passed to Emit, got %v", err)
	}
}

func TestVerifyRejectsWrongCapLength(t *testing.T) {
	const n = 4
	set, identities := buildTestAccessSet(t, n, 0)

	pk, err := signal.BuildCircuit(set.Height(), 0)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	sig, err := signal.Emit(pk, identities[0], ctx, set, 0)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	_, err = signal.Verify(pk.VerifierKey(), ctx, sig, set.RootCap()[:0])
	if !errors.Is(err, signal.ErrBadArgument) {
		t.Fatalf("expected ErrBadArgument for a wrong-length cap, got %v", err)
	}
}

func TestVerifyRejectsPerturbedCap(t *testing.T) {
	const n = 4
	set, identities := buildTestAccessSet(t, n, 0)

	pk, err := signal.BuildCircuit(set.Height(), 0)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	sig, err := signal.Emit(pk, identities[0], ctx, set, 0)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	// Same length as the genuine cap, one element perturbed: this is the
	// cap-content counterpart to TestVerifyRejectsWrongCapLength above.
	forgedCap := set.RootCap()
	forgedCap[0][0] = new(big.Int).Add(forgedCap[0][0], big.NewInt(1))

	ok, err := signal.Verify(pk.VerifierKey(), ctx, sig, forgedCap)
	if err != nil {
		t.Fatalf("verify returned an error instead of a false result: %v", err)
	}
	if ok {
		t.Fatal("signal verified against a perturbed cap")
	}
}

// TestNullifyBitFlipChangesNullifier samples random (identity, ctx) pairs,
// flips a single bit of ctx, and checks the nullifier always changes. This
// is a statistical stand-in for unlinkability: it does not prove no
// collision can ever occur, only that ~1000 independent single-bit
// perturbations never produce one.
func TestNullifyBitFlipChangesNullifier(t *testing.T) {
	const trials = 1000
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < trials; i++ {
		id, err := signal.GenerateIdentity()
		if err != nil {
			t.Fatalf("trial %d: generate identity: %v", i, err)
		}
		ctx, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("trial %d: random context: %v", i, err)
		}

		lane := rng.Intn(field.Width)
		bit := rng.Intn(254)
		flipped := ctx
		flipped[lane] = new(big.Int).Xor(ctx[lane], new(big.Int).Lsh(big.NewInt(1), uint(bit)))

		if signal.Nullify(id, ctx).Equal(signal.Nullify(id, flipped)) {
			t.Fatalf("trial %d: flipping one bit of ctx[%d] did not change the nullifier", i, lane)
		}
	}
}

// TestEmitAndVerifyRoundTripAtDefaultHeight exercises a full Emit/Verify
// round trip at the production access-set shape (2^20 leaves). Proving at
// this height takes minutes; the test runs by default and is skipped under
// `-short`.
func TestEmitAndVerifyRoundTripAtDefaultHeight(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 2^20-leaf round trip in -short mode")
	}

	set, identities := buildTestAccessSet(t, 1<<config.DefaultHeight, config.DefaultCapHeight)

	pk, err := signal.BuildCircuit(set.Height(), config.DefaultCapHeight)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}

	const index = 1 << (config.DefaultHeight - 3)
	sig, err := signal.Emit(pk, identities[index], ctx, set, index)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	ok, err := signal.Verify(pk.VerifierKey(), ctx, sig, set.RootCap())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signal to verify at the default access-set height")
	}
}

func TestBuildCircuitCachesByShape(t *testing.T) {
	a, err := signal.BuildCircuit(3, 1)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}
	b, err := signal.BuildCircuit(3, 1)
	if err != nil {
		t.Fatalf("build circuit: %v", err)
	}
	if a != b {
		t.Fatal("expected BuildCircuit to return the cached prover key for an identical shape")
	}
}
