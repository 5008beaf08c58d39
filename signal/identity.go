package signal

import (
	"fmt"

	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/pkg/poseidon"
)

// Identity is a membership secret: a pair of independently-random digests.
// S1 (the nullifier secret) is the half that also derives the per-context
// nullifier; S2 (the trapdoor) only ever appears inside the commitment.
// The Tornado variant drops S2 and commits S1 against a shared, public
// topic instead (see Deposit/Withdraw in tornado.go).
type Identity struct {
	S1 field.Digest
	S2 field.Digest
}

// GenerateIdentity draws a fresh random identity.
func GenerateIdentity() (Identity, error) {
	s1, err := field.RandomDigest()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: generate identity nullifier secret: %v", ErrBadArgument, err)
	}
	s2, err := field.RandomDigest()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: generate identity trapdoor secret: %v", ErrBadArgument, err)
	}
	return Identity{S1: s1, S2: s2}, nil
}

// Commit computes commit(s1, s2) = H(s1 || s2), the leaf an identity
// contributes to an access set.
func Commit(id Identity) field.Digest {
	return poseidon.HashElements(append(id.S1.ToBigInts(), id.S2.ToBigInts()...)...)
}

// Nullify computes nullify(s1, ctx) = H(s1 || ctx), the per-context
// nullifier a signal publishes to prevent replay within that context.
func Nullify(id Identity, ctx field.Digest) field.Digest {
	return poseidon.HashElements(append(id.S1.ToBigInts(), ctx.ToBigInts()...)...)
}
