package signal

import (
	"encoding/json"
	"fmt"
	"math/big"

	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
)

// ProofFixture is a deterministic JSON artifact encoding a generated
// Semaphore signal and its public inputs, for downstream (e.g. Solidity)
// verifier testing. Fixture export is not on-chain settlement: it is a
// test artifact, not a submission path.
type ProofFixture struct {
	SolidityProof [8]string   `json:"solidity_proof"`
	Nullifier     [4]string   `json:"nullifier"`
	Context       [4]string   `json:"context"`
	Cap           [][4]string `json:"cap"`
}

// ExportProofFixture emits a signal for (id, ctx, index) against accessSet
// using pk, verifies it, and marshals a Solidity-ready fixture.
func ExportProofFixture(pk *ProverKey, id Identity, ctx field.Digest, accessSet *merkleset.AccessSet, index int) ([]byte, error) {
	sig, err := Emit(pk, id, ctx, accessSet, index)
	if err != nil {
		return nil, err
	}

	ok, err := Verify(pk.VerifierKey(), ctx, sig, accessSet.RootCap())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: freshly generated signal failed verification", ErrVerification)
	}

	bn254Proof, ok := sig.Proof.(*groth16bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected proof type %T", ErrProofGeneration, sig.Proof)
	}

	aX, aY := new(big.Int), new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)

	bX0, bX1, bY0, bY1 := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)

	cX, cY := new(big.Int), new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)

	// Solidity format: [A.x, A.y, B.x1, B.x0, B.y1, B.y0, C.x, C.y]
	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	fixture := ProofFixture{
		Cap: make([][4]string, len(accessSet.RootCap())),
	}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}
	for i, e := range sig.Nullifier {
		fixture.Nullifier[i] = fmt.Sprintf("0x%064x", e)
	}
	for i, e := range ctx {
		fixture.Context[i] = fmt.Sprintf("0x%064x", e)
	}
	for i, entry := range accessSet.RootCap() {
		for j, e := range entry {
			fixture.Cap[i][j] = fmt.Sprintf("0x%064x", e)
		}
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}
	return jsonOut, nil
}

// WithdrawProofFixture is ExportWithdrawFixture's JSON artifact for the
// Tornado variant, mirroring ProofFixture's field shape with single-scalar
// public inputs instead of Wide4 ones.
type WithdrawProofFixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	Nullifier     string    `json:"nullifier"`
	RootHash      string    `json:"root_hash"`
	Topic         [4]string `json:"topic"`
}

// ExportWithdrawFixture deposits id under topic into tree, withdraws it,
// verifies the withdrawal, and marshals a Solidity-ready fixture.
func ExportWithdrawFixture(pk *ProverKey, id Identity, topic field.Digest, tree *merkleset.FixedDepthSet) ([]byte, error) {
	index, err := Deposit(tree, id, topic)
	if err != nil {
		return nil, err
	}

	sig, err := Withdraw(pk, id, topic, tree, index)
	if err != nil {
		return nil, err
	}

	ok, err := VerifyWithdraw(pk.VerifierKey(), topic, tree.Root(), sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: freshly generated withdrawal failed verification", ErrVerification)
	}

	bn254Proof, ok := sig.Proof.(*groth16bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected proof type %T", ErrProofGeneration, sig.Proof)
	}

	aX, aY := new(big.Int), new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)

	bX0, bX1, bY0, bY1 := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)

	cX, cY := new(big.Int), new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)

	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	fixture := WithdrawProofFixture{
		Nullifier: fmt.Sprintf("0x%064x", sig.Nullifier),
		RootHash:  fmt.Sprintf("0x%064x", tree.Root()),
	}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}
	for i, e := range topic {
		fixture.Topic[i] = fmt.Sprintf("0x%064x", e)
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal withdraw fixture: %w", err)
	}
	return jsonOut, nil
}
