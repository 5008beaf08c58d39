// Package merkleset builds the Merkle access set that a membership signal
// proves knowledge of a leaf in: a dense, fully-indexed tree for the
// Semaphore variant's Wide4-node tree, and a fixed-depth single-wide tree
// for the Tornado variant (see fixed_depth.go).
package merkleset

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/pkg/poseidon"
)

// ErrInvalidLeafCount is returned when the leaf count is not a power of two.
var ErrInvalidLeafCount = errors.New("leaf count must be a nonzero power of two")

// ErrInvalidCapHeight is returned when capHeight is out of [0, height].
var ErrInvalidCapHeight = errors.New("cap height out of range")

// ErrIndexOutOfRange is returned when an opened index does not exist.
var ErrIndexOutOfRange = errors.New("leaf index out of range")

// AccessSet is a perfect binary Merkle tree of identity-commitment digests,
// built bottom-up with poseidon.CombineNodes. Every level up to the root is
// computed and retained, but Open's path stops at the cap row and only the
// cap row is meant to be published as public input.
type AccessSet struct {
	levels    [][]field.Digest // levels[0] = leaves, levels[height] = root
	height    int
	capHeight int
}

// NewAccessSet builds an AccessSet over leaves, keeping capHeight levels
// uncollapsed at the top (cap = the 2^capHeight digests at that level).
func NewAccessSet(leaves []field.Digest, capHeight int) (*AccessSet, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLeafCount, n)
	}
	height := bits.Len(uint(n)) - 1
	if capHeight < 0 || capHeight > height {
		return nil, fmt.Errorf("%w: height=%d capHeight=%d", ErrInvalidCapHeight, height, capHeight)
	}

	levels := make([][]field.Digest, height+1)
	levels[0] = append([]field.Digest(nil), leaves...)

	for lvl := 0; lvl < height; lvl++ {
		cur := levels[lvl]
		next := make([]field.Digest, len(cur)/2)
		for i := range next {
			next[i] = poseidon.CombineNodes(cur[2*i], cur[2*i+1])
		}
		levels[lvl+1] = next
	}

	return &AccessSet{levels: levels, height: height, capHeight: capHeight}, nil
}

// Height returns the tree's total height (log2 of the leaf count).
func (a *AccessSet) Height() int { return a.height }

// CapHeight returns the number of uncollapsed top levels.
func (a *AccessSet) CapHeight() int { return a.capHeight }

// RootCap returns the 2^capHeight digests at the cap level, in index order.
func (a *AccessSet) RootCap() []field.Digest {
	cap := a.levels[a.height-a.capHeight]
	out := make([]field.Digest, len(cap))
	copy(out, cap)
	return out
}

// AuthPath is the ordered sibling digests from a leaf up to (not including)
// the cap row.
type AuthPath struct {
	Siblings []field.Digest
}

// Open returns the authentication path for the leaf at index.
func (a *AccessSet) Open(index int) (AuthPath, error) {
	n := len(a.levels[0])
	if index < 0 || index >= n {
		return AuthPath{}, fmt.Errorf("%w: index=%d leaves=%d", ErrIndexOutOfRange, index, n)
	}

	pathLen := a.height - a.capHeight
	siblings := make([]field.Digest, pathLen)

	idx := index
	for lvl := 0; lvl < pathLen; lvl++ {
		siblingIdx := idx ^ 1
		siblings[lvl] = a.levels[lvl][siblingIdx]
		idx /= 2
	}

	return AuthPath{Siblings: siblings}, nil
}

// Verify re-derives the cap entry reached by folding leaf up through path
// starting at index, and reports whether it matches the given cap row.
func (p AuthPath) Verify(leaf field.Digest, index int, cap []field.Digest) bool {
	current := leaf
	idx := index
	for _, sibling := range p.Siblings {
		if idx%2 == 0 {
			current = poseidon.CombineNodes(current, sibling)
		} else {
			current = poseidon.CombineNodes(sibling, current)
		}
		idx /= 2
	}

	capIdx := idx
	if capIdx < 0 || capIdx >= len(cap) {
		return false
	}
	return current.Equal(cap[capIdx])
}
