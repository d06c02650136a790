package compression

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// MaxDepth bounds the depth of a tree.
const MaxDepth = 30

// InitArgs creates an empty tree owned by Authority.
type InitArgs struct {
	Tree        solana.PublicKey
	Authority   solana.PublicKey
	MaxDepth    uint32
	CanopyDepth uint32
}

// VerifyArgs proves that Leaf sits at Index under Root. Proof lists sibling
// nodes from the leaf level upward and may omit the levels cached in the
// canopy.
type VerifyArgs struct {
	Tree  solana.PublicKey
	Root  Hash
	Leaf  Hash
	Index uint32
	Proof []Hash
}

// ReplaceArgs swaps Previous for New at Index once Previous verifies.
type ReplaceArgs struct {
	Tree     solana.PublicKey
	Root     Hash
	Previous Hash
	New      Hash
	Index    uint32
	Proof    []Hash
}

// Service is the compressed-tree collaborator used by mutation programs.
// ReplaceLeaf must be signed by the authority the tree was created with.
type Service interface {
	InitEmptyTree(ctx context.Context, args InitArgs) error
	VerifyLeaf(ctx context.Context, args VerifyArgs) error
	ReplaceLeaf(ctx context.Context, signer solana.PublicKey, args ReplaceArgs) error
}
