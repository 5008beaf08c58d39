package signal

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/anon-signal/memberproof/circuit"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
	"github.com/anon-signal/memberproof/pkg/poseidon"
)

// WithdrawSignal is a Tornado-variant membership proof: a single-scalar
// nullifier plus the proof that it was derived from a leaf of a
// fixed-depth deposit tree committed under a shared topic.
type WithdrawSignal struct {
	Nullifier *big.Int
	Proof     groth16.Proof
}

// DenominationTopic derives the shared topic digest for a fixed-denomination
// pool: every depositor and withdrawer in the same pool commits against the
// same topic, keyed only by the denomination amount (in the smallest
// on-chain unit, e.g. config.TornadoDenomination), not by any per-user value.
func DenominationTopic(denomination int64) field.Digest {
	return poseidon.HashElements(big.NewInt(denomination))
}

// depositLeaf computes the leaf a deposit of id under topic contributes to
// the tree: the first element of commit(id.S1, topic).
func depositLeaf(id Identity, topic field.Digest) *big.Int {
	commitment := poseidon.HashElements(append(id.S1.ToBigInts(), topic.ToBigInts()...)...)
	return commitment[0]
}

// Deposit inserts id's commitment (narrowed to one scalar, under topic)
// into tree and returns the index it landed at. Callers are responsible
// for keeping id secret until they later call Withdraw.
func Deposit(tree *merkleset.FixedDepthSet, id Identity, topic field.Digest) (int, error) {
	index, err := tree.InsertLeaf(depositLeaf(id, topic))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return index, nil
}

// Withdraw proves knowledge of a deposit at index in tree and publishes
// nullify(id.S1, topic)[0] as the withdrawal's nullifier.
func Withdraw(pk *ProverKey, id Identity, topic field.Digest, tree *merkleset.FixedDepthSet, index int) (*WithdrawSignal, error) {
	if pk.Variant != TornadoVariant {
		return nil, fmt.Errorf("%w: prover key is a %s key, not tornado", ErrBadArgument, pk.Variant)
	}
	if pk.Height != tree.Depth() {
		return nil, fmt.Errorf("%w: tree depth %d does not match prover key depth %d", ErrBadArgument, tree.Depth(), pk.Height)
	}

	siblings, directions, err := tree.Open(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}

	leaf := depositLeaf(id, topic)
	if !merkleset.VerifyPath(leaf, siblings, directions, tree.Root()) {
		return nil, fmt.Errorf("%w: deposit does not open to the claimed leaf", ErrWitnessGapOrConflict)
	}

	nullifierWide := poseidon.HashElements(append(id.S1.ToBigInts(), topic.ToBigInts()...)...)
	nullifier := nullifierWide[0]

	assignment := circuit.WithdrawCircuit{
		RootHash:   tree.Root(),
		Nullifier:  nullifier,
		Topic:      field.Witness(topic),
		S1:         field.Witness(id.S1),
		Directions: make([]frontend.Variable, len(directions)),
		Siblings:   make([]frontend.Variable, len(siblings)),
	}
	for i, d := range directions {
		assignment.Directions[i] = big.NewInt(int64(d))
	}
	for i, s := range siblings {
		assignment.Siblings[i] = s
	}

	w, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: build witness: %v", ErrWitnessGapOrConflict, err)
	}

	proof, err := groth16.Prove(pk.CCS, pk.PK, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}

	return &WithdrawSignal{Nullifier: nullifier, Proof: proof}, nil
}

// VerifyWithdraw checks sig against topic and the tree's current root.
func VerifyWithdraw(vk *VerifierKey, topic field.Digest, root *big.Int, sig *WithdrawSignal) (bool, error) {
	if vk.Variant != TornadoVariant {
		return false, fmt.Errorf("%w: verifier key is a %s key, not tornado", ErrBadArgument, vk.Variant)
	}

	assignment := circuit.WithdrawCircuit{
		RootHash:  root,
		Nullifier: sig.Nullifier,
		Topic:     field.Witness(topic),
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
