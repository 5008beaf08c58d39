package merkleset

import (
	"math/big"
	"testing"

	"github.com/anon-signal/memberproof/pkg/poseidon"
)

func TestFixedDepthSetInsertAndOpen(t *testing.T) {
	zeroLeaf := poseidon.HashElement(big.NewInt(0))
	const depth = 8

	tree := NewFixedDepthSet(depth, zeroLeaf)
	if tree.Root().Cmp(PrecomputeZeroHashes(depth, zeroLeaf)[depth]) != 0 {
		t.Fatalf("empty tree root should equal the all-zero subtree hash")
	}

	leaves := make([]*big.Int, 5)
	for i := range leaves {
		leaves[i] = poseidon.HashElement(big.NewInt(int64(100 + i)))
		idx, err := tree.InsertLeaf(leaves[i])
		if err != nil {
			t.Fatalf("InsertLeaf: %v", err)
		}
		if idx != i {
			t.Fatalf("expected sequential index %d, got %d", i, idx)
		}
	}

	for i, leaf := range leaves {
		siblings, directions, err := tree.Open(i)
		if err != nil {
			t.Fatalf("Open(%d): %v", i, err)
		}
		if len(siblings) != depth || len(directions) != depth {
			t.Fatalf("expected %d-length path, got %d siblings / %d directions", depth, len(siblings), len(directions))
		}
		if !VerifyPath(leaf, siblings, directions, tree.Root()) {
			t.Fatalf("VerifyPath failed for inserted leaf %d", i)
		}
	}
}

func TestFixedDepthSetRejectsOutOfRangeOpen(t *testing.T) {
	zeroLeaf := poseidon.HashElement(big.NewInt(0))
	tree := NewFixedDepthSet(4, zeroLeaf)
	if _, _, err := tree.Open(1 << 4); err == nil {
		t.Fatalf("expected error opening out-of-range index")
	}
}

func TestFixedDepthSetRejectsOverflow(t *testing.T) {
	zeroLeaf := poseidon.HashElement(big.NewInt(0))
	tree := NewFixedDepthSet(1, zeroLeaf)

	if _, err := tree.InsertLeaf(poseidon.HashElement(big.NewInt(1))); err != nil {
		t.Fatalf("InsertLeaf 1: %v", err)
	}
	if _, err := tree.InsertLeaf(poseidon.HashElement(big.NewInt(2))); err != nil {
		t.Fatalf("InsertLeaf 2: %v", err)
	}
	if _, err := tree.InsertLeaf(poseidon.HashElement(big.NewInt(3))); err == nil {
		t.Fatalf("expected error inserting beyond a depth-1 tree's capacity")
	}
}
