package circuit

import "github.com/consensys/gnark/frontend"

// KeyPossessionCircuit proves knowledge of a secret S1 whose commitment
// against a fixed, public S2 matches a registered public value, without
// revealing S1. It is a narrower corollary of the same Commit formula the
// membership circuits use for identity commitments — useful standalone
// whenever a system needs "prove you hold the secret half of this
// commitment" without a Merkle opening attached, the way a leaked-key
// report needs to bind a claim to a specific secret without exposing it.
type KeyPossessionCircuit struct {
	Commitment Wide4             `gnark:",public"`
	Binding    frontend.Variable `gnark:",public"`
	S2         Wide4             `gnark:",public"`

	S1 Wide4
}

func (c *KeyPossessionCircuit) Define(api frontend.API) error {
	for i := range c.S1 {
		api.AssertIsEqual(api.IsZero(c.S1[i]), 0)
	}

	derived, err := Commit(api, c.S1, c.S2)
	if err != nil {
		return err
	}
	assertWide4Equal(api, derived, c.Commitment)

	// Binding carries no constraint of its own; it ties the proof to a
	// specific verifier-chosen context (e.g. a reporter address) so the
	// proof cannot be replayed by a third party who observes it in flight.
	_ = c.Binding

	return nil
}
