// Package circuit defines the gnark constraint systems for the two
// membership-signalling variants (Semaphore-style and Tornado-style), built
// from a small set of shared primitives so neither variant's commitment or
// nullifier formula can drift from the other.
package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// Width is the in-circuit mirror of field.Width; kept separate to avoid a
// circuit -> field import cycle concern, and because a Wide4 is an array
// type, not a slice, which gnark's reflection-based compiler needs for
// fixed-shape struct fields.
const Width = 4

// Wide4 is a width-4 digest as circuit wires.
type Wide4 = [Width]frontend.Variable

// newHasher constructs the Poseidon2-backed Merkle-Damgard hasher with the
// parameters used throughout this module's circuits (state width 2, 6 full
// rounds, 50 partial rounds).
func newHasher(api frontend.API) (hash.FieldHasher, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	return hash.NewMerkleDamgardHasher(api, p, 0), nil
}

// HashElements is the in-circuit twin of poseidon.HashElements: it absorbs
// elems and squeezes a Wide4 by hashing four times, once per lane, each
// preceded by a constant lane index.
func HashElements(api frontend.API, elems ...frontend.Variable) (Wide4, error) {
	var out Wide4
	for lane := 0; lane < Width; lane++ {
		h, err := newHasher(api)
		if err != nil {
			return Wide4{}, err
		}
		h.Write(lane)
		h.Write(elems...)
		out[lane] = h.Sum()
	}
	return out, nil
}

// HashElement is the un-widened single-output sponge, used by the
// Tornado-variant's single-wide Merkle combine.
func HashElement(api frontend.API, elems ...frontend.Variable) (frontend.Variable, error) {
	h, err := newHasher(api)
	if err != nil {
		return nil, err
	}
	h.Write(elems...)
	return h.Sum(), nil
}

// WideCombine folds a Wide4 left/right child pair into their parent digest.
func WideCombine(api frontend.API, left, right Wide4) (Wide4, error) {
	return HashElements(api, append(append([]frontend.Variable{}, left[:]...), right[:]...)...)
}

// SingleCombine folds two bare scalars into their parent scalar.
func SingleCombine(api frontend.API, left, right frontend.Variable) (frontend.Variable, error) {
	return HashElement(api, left, right)
}
