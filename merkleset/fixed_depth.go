package merkleset

import (
	"fmt"
	"math/big"

	"github.com/anon-signal/memberproof/pkg/poseidon"
)

// FixedDepthSet is a single-wide, fixed-depth sparse Merkle tree: only
// inserted leaves are stored, and any unset position folds in a
// precomputed zero-subtree hash instead. It backs the Tornado variant's
// incrementally-grown deposit tree, where WithdrawCircuit expects explicit
// per-level direction booleans rather than a decomposed leaf index.
type FixedDepthSet struct {
	depth      int
	zeroHashes []*big.Int          // zeroHashes[i] = hash of an all-zero subtree at level i
	levels     []map[int]*big.Int  // levels[0] = leaves .. levels[depth] = root
	nextIndex  int
}

// PrecomputeZeroHashes builds the zero-subtree hash chain rooted at
// zeroLeaf: zeroHashes[0] = zeroLeaf, zeroHashes[i] = H(zeroHashes[i-1], zeroHashes[i-1]).
func PrecomputeZeroHashes(depth int, zeroLeaf *big.Int) []*big.Int {
	zh := make([]*big.Int, depth+1)
	zh[0] = new(big.Int).Set(zeroLeaf)
	for i := 1; i <= depth; i++ {
		zh[i] = poseidon.CombineScalars(zh[i-1], zh[i-1])
	}
	return zh
}

// NewFixedDepthSet builds an empty fixed-depth set of the given depth.
func NewFixedDepthSet(depth int, zeroLeaf *big.Int) *FixedDepthSet {
	levels := make([]map[int]*big.Int, depth+1)
	for i := range levels {
		levels[i] = make(map[int]*big.Int)
	}
	return &FixedDepthSet{
		depth:      depth,
		zeroHashes: PrecomputeZeroHashes(depth, zeroLeaf),
		levels:     levels,
	}
}

// Depth returns the tree's fixed depth.
func (s *FixedDepthSet) Depth() int { return s.depth }

// NextIndex returns the next unused leaf slot, the position a new deposit
// would occupy.
func (s *FixedDepthSet) NextIndex() int { return s.nextIndex }

// InsertLeaf places leaf at the next free index and recomputes every
// ancestor on its path, returning the index it was inserted at.
func (s *FixedDepthSet) InsertLeaf(leaf *big.Int) (int, error) {
	index := s.nextIndex
	if index >= 1<<uint(s.depth) {
		return 0, fmt.Errorf("fixed-depth set of depth %d is full", s.depth)
	}

	s.levels[0][index] = leaf

	idx := index
	for lvl := 0; lvl < s.depth; lvl++ {
		siblingIdx := idx ^ 1
		left, right := s.levels[lvl][idx], s.nodeAt(lvl, siblingIdx)
		if idx%2 != 0 {
			left, right = right, s.levels[lvl][idx]
		}
		parentIdx := idx / 2
		s.levels[lvl+1][parentIdx] = poseidon.CombineScalars(left, right)
		idx = parentIdx
	}

	s.nextIndex++
	return index, nil
}

// nodeAt returns the stored node at (lvl, idx), falling back to the
// precomputed zero-subtree hash for that level.
func (s *FixedDepthSet) nodeAt(lvl, idx int) *big.Int {
	if v, ok := s.levels[lvl][idx]; ok {
		return v
	}
	return s.zeroHashes[lvl]
}

// Root returns the tree's current root.
func (s *FixedDepthSet) Root() *big.Int {
	return s.nodeAt(s.depth, 0)
}

// Open returns the sibling path and per-level direction bits for leafIndex.
// directions[lvl] == 0 means the current node at that level is the left
// child (sibling on the right); 1 means the current node is the right
// child (sibling on the left) — the same convention WithdrawCircuit's
// per-level api.Select fold expects.
func (s *FixedDepthSet) Open(leafIndex int) (siblings []*big.Int, directions []int, err error) {
	if leafIndex < 0 || leafIndex >= 1<<uint(s.depth) {
		return nil, nil, fmt.Errorf("%w: index=%d depth=%d", ErrIndexOutOfRange, leafIndex, s.depth)
	}

	siblings = make([]*big.Int, s.depth)
	directions = make([]int, s.depth)

	idx := leafIndex
	for lvl := 0; lvl < s.depth; lvl++ {
		if idx%2 == 0 {
			siblings[lvl] = s.nodeAt(lvl, idx+1)
			directions[lvl] = 0
		} else {
			siblings[lvl] = s.nodeAt(lvl, idx-1)
			directions[lvl] = 1
		}
		idx /= 2
	}

	return siblings, directions, nil
}

// VerifyPath re-derives the root reached by folding leaf through siblings
// per directions, and reports whether it matches root.
func VerifyPath(leaf *big.Int, siblings []*big.Int, directions []int, root *big.Int) bool {
	if len(siblings) != len(directions) {
		return false
	}
	current := leaf
	for i, sibling := range siblings {
		if directions[i] == 0 {
			current = poseidon.CombineScalars(current, sibling)
		} else {
			current = poseidon.CombineScalars(sibling, current)
		}
	}
	return current.Cmp(root) == 0
}
