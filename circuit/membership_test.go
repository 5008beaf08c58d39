package circuit_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/anon-signal/memberproof/circuit"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/pkg/poseidon"
)

// buildMembershipTree computes a full Wide4 Merkle tree over leaves and
// returns every level, leaves first, so a test can pull a sibling path and
// cap row without going through package merkleset.
func buildMembershipTree(leaves []field.Digest) [][]field.Digest {
	levels := [][]field.Digest{leaves}
	for len(levels[len(levels)-1]) > 1 {
		cur := levels[len(levels)-1]
		next := make([]field.Digest, len(cur)/2)
		for i := range next {
			next[i] = poseidon.CombineNodes(cur[2*i], cur[2*i+1])
		}
		levels = append(levels, next)
	}
	return levels
}

func TestMembershipCircuitEndToEnd(t *testing.T) {
	const height = 3
	const capHeight = 1
	const pathLen = height - capHeight

	leaves := make([]field.Digest, 1<<height)
	s1s := make([]field.Digest, len(leaves))
	s2s := make([]field.Digest, len(leaves))
	for i := range leaves {
		s1, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s1: %v", err)
		}
		s2, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s2: %v", err)
		}
		s1s[i], s2s[i] = s1, s2
		leaves[i] = poseidon.HashElements(append(s1.ToBigInts(), s2.ToBigInts()...)...)
	}

	levels := buildMembershipTree(leaves)
	cap := levels[pathLen]

	const index = 5
	siblings := make([]field.Digest, pathLen)
	idx := index
	for lvl := 0; lvl < pathLen; lvl++ {
		siblings[lvl] = levels[lvl][idx^1]
		idx /= 2
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	nullifier := poseidon.HashElements(append(s1s[index].ToBigInts(), ctx.ToBigInts()...)...)

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit.NewMembershipCircuit(height, capHeight))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	assignment := circuit.MembershipCircuit{
		Cap:       make([]circuit.Wide4, len(cap)),
		Nullifier: field.Witness(nullifier),
		Context:   field.Witness(ctx),
		S1:        field.Witness(s1s[index]),
		S2:        field.Witness(s2s[index]),
		Index:     big.NewInt(int64(index)),
		Siblings:  make([]circuit.Wide4, pathLen),
	}
	for i, c := range cap {
		assignment.Cap[i] = field.Witness(c)
	}
	for i, s := range siblings {
		assignment.Siblings[i] = field.Witness(s)
	}

	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("public witness: %v", err)
	}

	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestMembershipCircuitRejectsWrongIndex(t *testing.T) {
	const height = 2
	const capHeight = 0
	const pathLen = height - capHeight

	leaves := make([]field.Digest, 1<<height)
	s1s := make([]field.Digest, len(leaves))
	s2s := make([]field.Digest, len(leaves))
	for i := range leaves {
		s1, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s1: %v", err)
		}
		s2, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s2: %v", err)
		}
		s1s[i], s2s[i] = s1, s2
		leaves[i] = poseidon.HashElements(append(s1.ToBigInts(), s2.ToBigInts()...)...)
	}
	levels := buildMembershipTree(leaves)
	cap := levels[pathLen]

	const actualIndex = 1
	const claimedIndex = 2 // actualIndex's true identity, opened at a mismatched index

	siblings := make([]field.Digest, pathLen)
	idx := claimedIndex
	for lvl := 0; lvl < pathLen; lvl++ {
		siblings[lvl] = levels[lvl][idx^1]
		idx /= 2
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit.NewMembershipCircuit(height, capHeight))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	// We only need the constraint system here: an inconsistent witness
	// should fail at proving time (IsSolved), not merely at verification.
	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	nullifier := poseidon.HashElements(append(s1s[actualIndex].ToBigInts(), ctx.ToBigInts()...)...)

	assignment := circuit.MembershipCircuit{
		Cap:       make([]circuit.Wide4, len(cap)),
		Nullifier: field.Witness(nullifier),
		Context:   field.Witness(ctx),
		S1:        field.Witness(s1s[actualIndex]),
		S2:        field.Witness(s2s[actualIndex]),
		Index:     big.NewInt(claimedIndex),
		Siblings:  make([]circuit.Wide4, pathLen),
	}
	for i, c := range cap {
		assignment.Cap[i] = field.Witness(c)
	}
	for i, s := range siblings {
		assignment.Siblings[i] = field.Witness(s)
	}

	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	if err := ccs.IsSolved(witness); err == nil {
		t.Fatal("expected IsSolved to fail for a leaf/index mismatch")
	}
}

func TestMembershipCircuitRejectsOutOfRangeIndex(t *testing.T) {
	const height = 2
	const capHeight = 0
	const pathLen = height - capHeight

	leaves := make([]field.Digest, 1<<height)
	s1s := make([]field.Digest, len(leaves))
	s2s := make([]field.Digest, len(leaves))
	for i := range leaves {
		s1, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s1: %v", err)
		}
		s2, err := field.RandomDigest()
		if err != nil {
			t.Fatalf("random s2: %v", err)
		}
		s1s[i], s2s[i] = s1, s2
		leaves[i] = poseidon.HashElements(append(s1.ToBigInts(), s2.ToBigInts()...)...)
	}
	levels := buildMembershipTree(leaves)
	cap := levels[pathLen]

	const actualIndex = 1
	// 1<<height sets a bit one position above the pathLen+capHeight-bit
	// decomposition api.ToBinary enforces; the sibling path below still
	// matches actualIndex, so only the index's range is at fault.
	outOfRangeIndex := big.NewInt(1 << height)

	siblings := make([]field.Digest, pathLen)
	idx := actualIndex
	for lvl := 0; lvl < pathLen; lvl++ {
		siblings[lvl] = levels[lvl][idx^1]
		idx /= 2
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit.NewMembershipCircuit(height, capHeight))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		t.Fatalf("random context: %v", err)
	}
	nullifier := poseidon.HashElements(append(s1s[actualIndex].ToBigInts(), ctx.ToBigInts()...)...)

	assignment := circuit.MembershipCircuit{
		Cap:       make([]circuit.Wide4, len(cap)),
		Nullifier: field.Witness(nullifier),
		Context:   field.Witness(ctx),
		S1:        field.Witness(s1s[actualIndex]),
		S2:        field.Witness(s2s[actualIndex]),
		Index:     outOfRangeIndex,
		Siblings:  make([]circuit.Wide4, pathLen),
	}
	for i, c := range cap {
		assignment.Cap[i] = field.Witness(c)
	}
	for i, s := range siblings {
		assignment.Siblings[i] = field.Witness(s)
	}

	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	if err := ccs.IsSolved(witness); err == nil {
		t.Fatal("expected IsSolved to fail for an index with a bit set above the decomposition width")
	}
}
