package compression

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MemoryTree is a sparse concurrent Merkle tree: only written nodes are
// stored, every other node is the empty subtree hash of its level. It is not
// safe for concurrent use on its own; MemoryService serializes access.
type MemoryTree struct {
	depth       uint32
	canopyDepth uint32
	authority   solana.PublicKey

	// nodes[0] holds leaves, nodes[depth] the root.
	nodes    []map[uint32]Hash
	zeros    []Hash
	root     Hash
	sequence uint64
}

// NewMemoryTree returns an empty tree of the given depth.
func NewMemoryTree(authority solana.PublicKey, depth, canopyDepth uint32) (*MemoryTree, error) {
	if depth == 0 || depth > MaxDepth || canopyDepth > depth {
		return nil, fmt.Errorf("%w: depth %d canopy %d", ErrInvalidTreeDepth, depth, canopyDepth)
	}
	t := &MemoryTree{
		depth:       depth,
		canopyDepth: canopyDepth,
		authority:   authority,
		nodes:       make([]map[uint32]Hash, depth+1),
		zeros:       emptySubtreeHashes(depth),
	}
	for i := range t.nodes {
		t.nodes[i] = make(map[uint32]Hash)
	}
	t.root = t.zeros[depth]
	return t, nil
}

func emptySubtreeHashes(depth uint32) []Hash {
	zeros := make([]Hash, depth+1)
	zeros[0] = EmptyNode
	for i := uint32(1); i <= depth; i++ {
		zeros[i] = HashParent(zeros[i-1], zeros[i-1])
	}
	return zeros
}

func (t *MemoryTree) Depth() uint32 { return t.depth }
func (t *MemoryTree) CanopyDepth() uint32 { return t.canopyDepth }
func (t *MemoryTree) Root() Hash { return t.root }

// Sequence counts the replacements applied to the tree.
func (t *MemoryTree) Sequence() uint64 { return t.sequence }

// Capacity is the number of leaf slots.
func (t *MemoryTree) Capacity() uint64 { return uint64(1) << t.depth }

// ProofLength is the number of proof nodes a caller supplies.
func (t *MemoryTree) ProofLength() int { return int(t.depth - t.canopyDepth) }

func (t *MemoryTree) info(addr solana.PublicKey) TreeInfo {
	return TreeInfo{
		Tree:        addr,
		Authority:   t.authority,
		MaxDepth:    t.depth,
		CanopyDepth: t.canopyDepth,
		Root:        t.root,
		Sequence:    t.sequence,
	}
}

func (t *MemoryTree) node(level, index uint32) Hash {
	if h, ok := t.nodes[level][index]; ok {
		return h
	}
	return t.zeros[level]
}

// Leaf returns the node stored at index.
func (t *MemoryTree) Leaf(index uint32) (Hash, error) {
	if err := t.checkIndex(index); err != nil {
		return Hash{}, err
	}
	return t.node(0, index), nil
}

// Proof returns the caller-side proof for index: the siblings below the
// canopy, leaf level first.
func (t *MemoryTree) Proof(index uint32) ([]Hash, error) {
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}
	full := t.siblings(index)
	return full[:t.ProofLength()], nil
}

func (t *MemoryTree) siblings(index uint32) []Hash {
	path := make([]Hash, t.depth)
	for level := uint32(0); level < t.depth; level++ {
		path[level] = t.node(level, (index>>level)^1)
	}
	return path
}

func (t *MemoryTree) checkIndex(index uint32) error {
	if uint64(index) >= t.Capacity() {
		return fmt.Errorf("%w: %d for depth %d", ErrLeafIndexOutOfBounds, index, t.depth)
	}
	return nil
}

// Verify checks that leaf sits at index under root. The supplied proof may
// stop at the canopy; the cached upper levels are filled in from the tree.
func (t *MemoryTree) Verify(root, leaf Hash, index uint32, proof []Hash) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	if len(proof) < t.ProofLength() || len(proof) > int(t.depth) {
		return fmt.Errorf("%w: got %d want %d", ErrInvalidProofLength, len(proof), t.ProofLength())
	}
	if root != t.root {
		return fmt.Errorf("%w: root %s is not current root %s", ErrLeafMismatch, root, t.root)
	}

	path := t.siblings(index)
	copy(path, proof)
	current := leaf
	for level, sibling := range path {
		if (index>>uint(level))&1 == 0 {
			current = HashParent(current, sibling)
		} else {
			current = HashParent(sibling, current)
		}
	}
	if current != root {
		return fmt.Errorf("%w: leaf %s at index %d", ErrLeafMismatch, leaf, index)
	}
	return nil
}

// Replace verifies previous and writes next in its place, returning the
// new root. A failed verification leaves the tree untouched.
func (t *MemoryTree) Replace(root, previous, next Hash, index uint32, proof []Hash) (Hash, error) {
	if err := t.Verify(root, previous, index, proof); err != nil {
		return Hash{}, err
	}

	current := next
	t.nodes[0][index] = current
	for level := uint32(0); level < t.depth; level++ {
		sibling := t.node(level, (index>>level)^1)
		if (index>>level)&1 == 0 {
			current = HashParent(current, sibling)
		} else {
			current = HashParent(sibling, current)
		}
		t.nodes[level+1][index>>(level+1)] = current
	}
	t.root = current
	t.sequence++
	return current, nil
}
