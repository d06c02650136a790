package compression

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// TreeInfo is a read-only summary of one tree.
type TreeInfo struct {
	Tree        solana.PublicKey
	Authority   solana.PublicKey
	MaxDepth    uint32
	CanopyDepth uint32
	Root        Hash
	Sequence    uint64
}

// MemoryService is an in-process Service holding any number of trees.
type MemoryService struct {
	mu    sync.RWMutex
	trees map[solana.PublicKey]*MemoryTree
}

var _ Service = (*MemoryService)(nil)

func NewMemoryService() *MemoryService {
	return &MemoryService{trees: make(map[solana.PublicKey]*MemoryTree)}
}

func (s *MemoryService) InitEmptyTree(ctx context.Context, args InitArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tree, err := NewMemoryTree(args.Authority, args.MaxDepth, args.CanopyDepth)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[args.Tree]; ok {
		return fmt.Errorf("%w: %s", ErrTreeExists, args.Tree)
	}
	s.trees[args.Tree] = tree
	return nil
}

func (s *MemoryService) VerifyLeaf(ctx context.Context, args VerifyArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, err := s.lookup(args.Tree)
	if err != nil {
		return err
	}
	return tree.Verify(args.Root, args.Leaf, args.Index, args.Proof)
}

func (s *MemoryService) ReplaceLeaf(ctx context.Context, signer solana.PublicKey, args ReplaceArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.lookup(args.Tree)
	if err != nil {
		return err
	}
	if !signer.Equals(tree.authority) {
		return fmt.Errorf("%w: %s", ErrAuthorityMismatch, signer)
	}
	_, err = tree.Replace(args.Root, args.Previous, args.New, args.Index, args.Proof)
	return err
}

func (s *MemoryService) Root(tree solana.PublicKey) (Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(tree)
	if err != nil {
		return Hash{}, err
	}
	return t.Root(), nil
}

// Proof returns the caller-side proof for a leaf.
func (s *MemoryService) Proof(tree solana.PublicKey, index uint32) ([]Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(tree)
	if err != nil {
		return nil, err
	}
	return t.Proof(index)
}

func (s *MemoryService) Leaf(tree solana.PublicKey, index uint32) (Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(tree)
	if err != nil {
		return Hash{}, err
	}
	return t.Leaf(index)
}

// Info summarizes one tree.
func (s *MemoryService) Info(tree solana.PublicKey) (TreeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(tree)
	if err != nil {
		return TreeInfo{}, err
	}
	return t.info(tree), nil
}

// Trees lists every tree ordered by address.
func (s *MemoryService) Trees() []TreeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TreeInfo, 0, len(s.trees))
	for addr, t := range s.trees {
		out = append(out, t.info(addr))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tree.String() < out[j].Tree.String()
	})
	return out
}

func (s *MemoryService) lookup(tree solana.PublicKey) (*MemoryTree, error) {
	t, ok := s.trees[tree]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, tree)
	}
	return t, nil
}
