package signal

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/anon-signal/memberproof/circuit"
	"github.com/anon-signal/memberproof/pkg/setup"
)

// Export writes vk in gnark's native binary format.
func (vk *VerifierKey) Export(w io.Writer) error {
	if _, err := vk.VK.WriteTo(w); err != nil {
		return fmt.Errorf("write verifier key: %w", err)
	}
	return nil
}

// ImportVerifierKey reads a verifier key previously written by Export, for
// the given variant and tree shape.
func ImportVerifierKey(r io.Reader, variant Variant, height, capHeight int) (*VerifierKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: read verifier key: %v", ErrBadArgument, err)
	}
	return &VerifierKey{Variant: variant, Height: height, CapHeight: capHeight, VK: vk}, nil
}

// LoadFromCeremony loads a production key pair produced by a completed
// ceremony (see pkg/setup's Phase 1/Phase 2 flow) for the given circuit
// shape, rather than running a single-party dev setup.
func LoadFromCeremony(dir, circuitName string, variant Variant, height, capHeight int) (*ProverKey, error) {
	var newCircuit frontend.Circuit
	switch variant {
	case SemaphoreVariant:
		newCircuit = circuit.NewMembershipCircuit(height, capHeight)
	case TornadoVariant:
		newCircuit = circuit.NewWithdrawCircuit(height)
	default:
		return nil, fmt.Errorf("%w: unknown variant %s", ErrBadArgument, variant)
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, newCircuit)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s circuit: %v", ErrBadArgument, variant, err)
	}

	pk, vk, err := setup.LoadKeys(dir, circuitName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}

	return &ProverKey{Variant: variant, Height: height, CapHeight: capHeight, CCS: ccs, PK: pk, VK: vk}, nil
}
