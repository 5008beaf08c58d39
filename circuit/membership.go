package circuit

import (
	"math/bits"

	"github.com/consensys/gnark/frontend"
)

// MembershipCircuit is the Semaphore-style statement: the prover knows an
// identity (S1, S2) whose commitment is a leaf of the access set rooted at
// Cap, and publishes nullify(S1, Context) as Nullifier without revealing
// which leaf it opened.
//
// Cap holds the 2^capHeight digests at the top of the tree that the prover
// does not need to recompute (spec's cap-height policy); Siblings holds the
// remaining levels from the leaf up to the cap. Both slices are sized when
// the circuit is constructed, before compilation, so one circuit source
// serves any tree height without a new Go type per height.
type MembershipCircuit struct {
	Cap       []Wide4           `gnark:",public"`
	Nullifier Wide4             `gnark:",public"`
	Context   Wide4             `gnark:",public"`

	S1       Wide4
	S2       Wide4
	Index    frontend.Variable
	Siblings []Wide4
}

// NewMembershipCircuit allocates a MembershipCircuit shaped for a tree of
// the given total height and cap height (pathLen = height - capHeight
// sibling levels, 2^capHeight cap entries). Callers must compile a fresh
// instance whenever height or capHeight changes.
func NewMembershipCircuit(height, capHeight int) *MembershipCircuit {
	return &MembershipCircuit{
		Cap:      make([]Wide4, 1<<capHeight),
		Siblings: make([]Wide4, height-capHeight),
	}
}

func (c *MembershipCircuit) Define(api frontend.API) error {
	commitment, err := Commit(api, c.S1, c.S2)
	if err != nil {
		return err
	}

	pathLen := len(c.Siblings)
	capHeight := bits.Len(uint(len(c.Cap))) - 1
	indexBits := api.ToBinary(c.Index, pathLen+capHeight)

	current := commitment
	for lvl := 0; lvl < pathLen; lvl++ {
		dir := indexBits[lvl]
		sibling := c.Siblings[lvl]

		left := selectWide4(api, dir, sibling, current)
		right := selectWide4(api, dir, current, sibling)

		current, err = WideCombine(api, left, right)
		if err != nil {
			return err
		}
	}

	capEntry := selectCapEntry(api, c.Cap, indexBits[pathLen:])
	assertWide4Equal(api, current, capEntry)

	nullifier, err := Nullify(api, c.S1, c.Context)
	if err != nil {
		return err
	}
	assertWide4Equal(api, nullifier, c.Nullifier)

	return nil
}

// selectCapEntry multiplexes among the 2^len(bits) cap entries using a
// balanced tree of selects driven by bits in little-endian order (bits[0]
// is the same low-order bit that indexes the cap as a contiguous extension
// of the leaf-to-cap path). With a single cap entry, bits is empty and the
// sole entry is returned unconditionally — the general form of what the
// source this module is distilled from hard-coded as cap length 1.
func selectCapEntry(api frontend.API, cap []Wide4, bits []frontend.Variable) Wide4 {
	level := cap
	for _, b := range bits {
		next := make([]Wide4, len(level)/2)
		for i := range next {
			next[i] = selectWide4(api, b, level[2*i+1], level[2*i])
		}
		level = next
	}
	return level[0]
}
