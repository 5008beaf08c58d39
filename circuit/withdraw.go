package circuit

import "github.com/consensys/gnark/frontend"

// WithdrawCircuit is the Tornado-style specialization: the access set's tree
// is single-wide (one field element per node, not a Wide4) and every leaf
// is committed under a shared topic (the withdrawal's denomination/context)
// instead of a second independent secret. It reuses the exact same Commit
// and Nullify formulas as MembershipCircuit and narrows their Wide4 result
// to its first element, rather than defining a separate 1-wide hash.
//
// Unlike MembershipCircuit's index-decomposition fold, the sibling path is
// witnessed as explicit per-level direction booleans — the shape the source
// this module is distilled from used before its driver code went stale.
type WithdrawCircuit struct {
	RootHash  frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Topic     Wide4             `gnark:",public"`

	S1         Wide4
	Directions []frontend.Variable
	Siblings   []frontend.Variable
}

// NewWithdrawCircuit allocates a WithdrawCircuit for a fixed-depth tree of
// the given depth.
func NewWithdrawCircuit(depth int) *WithdrawCircuit {
	return &WithdrawCircuit{
		Directions: make([]frontend.Variable, depth),
		Siblings:   make([]frontend.Variable, depth),
	}
}

func (c *WithdrawCircuit) Define(api frontend.API) error {
	commitment, err := Commit(api, c.S1, c.Topic)
	if err != nil {
		return err
	}
	current := commitment[0]

	for lvl := range c.Siblings {
		dir := c.Directions[lvl]
		api.AssertIsBoolean(dir)

		sibling := c.Siblings[lvl]
		left := api.Select(dir, sibling, current)
		right := api.Select(dir, current, sibling)

		current, err = SingleCombine(api, left, right)
		if err != nil {
			return err
		}
	}

	api.AssertIsEqual(current, c.RootHash)

	nullifier, err := Nullify(api, c.S1, c.Topic)
	if err != nil {
		return err
	}
	api.AssertIsEqual(nullifier[0], c.Nullifier)

	return nil
}
