// Package poseidon wraps the Poseidon2 sponge used throughout the
// membership core, in its native (non-circuit) form. Every function here
// has a bit-identical in-circuit twin in package circuit so that a proof's
// witness can be derived outside the constraint system before being
// assigned to it.
package poseidon

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/anon-signal/memberproof/field"
)

// absorb writes a single element into a running sponge.
func absorb(h *poseidon2.Hasher, v *big.Int) {
	var e fr.Element
	e.SetBigInt(v)
	b := e.Bytes()
	h.Write(b[:])
}

// sumElement squeezes one field element and resets the sponge for reuse.
func sumElement(h *poseidon2.Hasher) *big.Int {
	out := new(big.Int).SetBytes(h.Sum(nil))
	h.Reset()
	return out
}

// HashElement absorbs elems in order and squeezes a single field element.
// This is the un-widened sponge, used wherever the wire protocol only ever
// needs one scalar out (e.g. CombineScalars, the Tornado variant's
// single-wide node combine).
func HashElement(elems ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, e := range elems {
		absorb(h, e)
	}
	return sumElement(h)
}

// HashElements absorbs elems and produces a width-4 Digest by squeezing the
// sponge four times, once per lane, each squeeze additionally preceded by
// its lane index so the four outputs are independent rather than identical
// repeats of the same sum. This is the lane-widening scheme that turns the
// single-output Poseidon2 sponge into a 4-wide digest function; it has
// nothing to do with the commitment/nullifier domain separation, which is
// carried entirely by which elements are absorbed.
func HashElements(elems ...*big.Int) field.Digest {
	var d field.Digest
	for lane := 0; lane < field.Width; lane++ {
		h := poseidon2.NewMerkleDamgardHasher()
		absorb(h, big.NewInt(int64(lane)))
		for _, e := range elems {
			absorb(h, e)
		}
		d[lane] = sumElement(h)
	}
	return d
}

// CombineNodes folds two width-4 digests (a Merkle node's left and right
// children) into their parent digest.
func CombineNodes(left, right field.Digest) field.Digest {
	return HashElements(append(left.ToBigInts(), right.ToBigInts()...)...)
}

// CombineScalars folds two bare scalars (the Tornado-variant's single-wide
// tree) into their parent scalar.
func CombineScalars(left, right *big.Int) *big.Int {
	return HashElement(left, right)
}
