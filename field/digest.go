// Package field provides the canonical field-element and digest types shared
// by the native and in-circuit halves of the membership core.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Width is the number of scalar-field elements in a Digest.
const Width = 4

// Digest is a width-4 vector of BN254 scalar-field elements, the output
// shape of every hash in this module (commitments, nullifiers, Merkle
// nodes). Elements are canonically ordered as produced by the hasher that
// built them.
type Digest [Width]*big.Int

// RandomDigest draws a uniformly random Digest (used for synthetic test
// identities and fixtures, never as a real secret derivation path).
func RandomDigest() (Digest, error) {
	var d Digest
	for i := range d {
		v, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
		if err != nil {
			return Digest{}, fmt.Errorf("random digest element %d: %w", i, err)
		}
		d[i] = v
	}
	return d, nil
}

// DigestFromBigInts copies exactly Width elements into a new Digest.
func DigestFromBigInts(elems []*big.Int) (Digest, error) {
	if len(elems) != Width {
		return Digest{}, fmt.Errorf("digest needs %d elements, got %d", Width, len(elems))
	}
	var d Digest
	for i, e := range elems {
		d[i] = new(big.Int).Set(e)
	}
	return d, nil
}

// ToBigInts flattens a Digest into a fresh []*big.Int slice.
func (d Digest) ToBigInts() []*big.Int {
	out := make([]*big.Int, Width)
	for i, e := range d {
		out[i] = new(big.Int).Set(e)
	}
	return out
}

// Equal reports whether two digests represent the same field elements.
func (d Digest) Equal(other Digest) bool {
	for i := range d {
		if d[i].Cmp(other[i]) != 0 {
			return false
		}
	}
	return true
}

// IsZero reports whether every element of the digest is the zero element.
func (d Digest) IsZero() bool {
	for _, e := range d {
		if e.Sign() != 0 {
			return false
		}
	}
	return true
}

// Canonicalize reduces every element modulo the BN254 scalar field, matching
// the reduction the hasher itself performs on its output. Callers that build
// a Digest from raw bytes (rather than from a hash call) should canonicalize
// before comparing or feeding it back into a circuit witness.
func (d Digest) Canonicalize() Digest {
	var out Digest
	for i, e := range d {
		var elem fr.Element
		elem.SetBigInt(e)
		out[i] = new(big.Int)
		elem.BigInt(out[i])
	}
	return out
}

// FlattenDigests concatenates a slice of digests into one []*big.Int, in
// order, matching the canonical public-input layout (cap digests, each
// flattened in element order, followed by the remaining scalars).
func FlattenDigests(digests []Digest) []*big.Int {
	out := make([]*big.Int, 0, len(digests)*Width)
	for _, d := range digests {
		out = append(out, d.ToBigInts()...)
	}
	return out
}
