// Package paralleltree stores governance metadata commitments in compressed
// Merkle trees. Every mutation proves the previous leaf before replacing it.
package paralleltree

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"clad/internal/compression"
)

// MutationState tracks one mutation request.
type MutationState uint8

const (
	Pending MutationState = iota
	Verified
	Replaced
	Rejected
)

func (s MutationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Verified:
		return "verified"
	case Replaced:
		return "replaced"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s MutationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MutationKind names the operation that produced a mutation.
type MutationKind string

const (
	KindMint   MutationKind = "mint"
	KindModify MutationKind = "modify"
	KindRemove MutationKind = "remove"
)

// Mutation is the outcome of a mint, modify or remove call.
type Mutation struct {
	Kind         MutationKind     `json:"kind"`
	Tree         solana.PublicKey `json:"tree"`
	AssetID      solana.PublicKey `json:"asset_id"`
	Index        uint32           `json:"index"`
	Nonce        uint64           `json:"nonce"`
	State        MutationState    `json:"state"`
	PreviousNode compression.Hash `json:"previous_node"`
	NewNode      compression.Hash `json:"new_node"`
	DataHash     compression.Hash `json:"data_hash"`
}

// LeafAccounts are the accounts shared by every leaf mutation.
type LeafAccounts struct {
	Tree         solana.PublicKey
	LeafOwner    solana.PublicKey
	LeafDelegate solana.PublicKey
	Signer       solana.PublicKey
}

type CreateTreeArgs struct {
	Tree        solana.PublicKey
	Creator     solana.PublicKey
	MaxDepth    uint32
	CanopyDepth uint32
	// Public defaults to false when nil.
	Public *bool
}

type MintArgs struct {
	LeafAccounts
	Root    compression.Hash
	Nonce   uint64
	Index   uint32
	Message GovernanceMetadata
	Proof   []compression.Hash
}

type ModifyArgs struct {
	LeafAccounts
	Root compression.Hash
	// DataHash is the hash currently committed by the leaf.
	DataHash compression.Hash
	Nonce    uint64
	Index    uint32
	Message  GovernanceMetadata
	Proof    []compression.Hash
}

type RemoveArgs struct {
	LeafAccounts
	Root     compression.Hash
	DataHash compression.Hash
	Nonce    uint64
	Index    uint32
	AssetID  solana.PublicKey
	Proof    []compression.Hash
}

// Program owns tree configs and drives the compression service.
type Program struct {
	programID solana.PublicKey
	service   compression.Service
	logger    *zap.Logger

	mu      sync.RWMutex
	configs map[solana.PublicKey]TreeConfig
}

func NewProgram(programID solana.PublicKey, service compression.Service, logger *zap.Logger) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Program{
		programID: programID,
		service:   service,
		logger:    logger,
		configs:   make(map[solana.PublicKey]TreeConfig),
	}
}

func (p *Program) ProgramID() solana.PublicKey {
	return p.programID
}

// TreeAuthority is the program-derived signer that owns a tree in the
// compression service.
func (p *Program) TreeAuthority(tree solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{tree[:]}, p.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive tree authority: %w", err)
	}
	return addr, bump, nil
}

// TreeConfig returns the config registered for tree.
func (p *Program) TreeConfig(tree solana.PublicKey) (TreeConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.configs[tree]
	return cfg, ok
}

// TreeConfigs returns a copy of every registered config.
func (p *Program) TreeConfigs() map[solana.PublicKey]TreeConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[solana.PublicKey]TreeConfig, len(p.configs))
	for k, v := range p.configs {
		out[k] = v
	}
	return out
}

// CreateParallelTree registers a config for a new tree, with the creator as
// initial delegate, and creates the empty tree under the derived authority.
func (p *Program) CreateParallelTree(ctx context.Context, args CreateTreeArgs) (TreeConfig, error) {
	if _, ok := p.TreeConfig(args.Tree); ok {
		return TreeConfig{}, fmt.Errorf("%w: %s", compression.ErrTreeExists, args.Tree)
	}
	authority, _, err := p.TreeAuthority(args.Tree)
	if err != nil {
		return TreeConfig{}, err
	}
	cfg := TreeConfig{
		TreeCreator:  args.Creator,
		TreeDelegate: args.Creator,
		IsPublic:     args.Public != nil && *args.Public,
	}

	err = p.service.InitEmptyTree(ctx, compression.InitArgs{
		Tree:        args.Tree,
		Authority:   authority,
		MaxDepth:    args.MaxDepth,
		CanopyDepth: args.CanopyDepth,
	})
	if err != nil {
		return TreeConfig{}, fmt.Errorf("create parallel tree: %w", err)
	}

	p.mu.Lock()
	p.configs[args.Tree] = cfg
	p.mu.Unlock()

	p.logger.Info("parallel tree created",
		zap.Stringer("tree", args.Tree),
		zap.Stringer("creator", args.Creator),
		zap.Uint32("max_depth", args.MaxDepth),
		zap.Uint32("canopy_depth", args.CanopyDepth),
		zap.Bool("public", cfg.IsPublic),
	)
	return cfg, nil
}

// SetTreeDelegate lets the creator hand mutation rights to another key.
func (p *Program) SetTreeDelegate(tree, signer, delegate solana.PublicKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.configs[tree]
	if !ok {
		return fmt.Errorf("%w: %s", compression.ErrTreeNotFound, tree)
	}
	if !signer.Equals(cfg.TreeCreator) {
		return fmt.Errorf("%w: %s", ErrTreeAuthorityIncorrect, signer)
	}
	cfg.TreeDelegate = delegate
	p.configs[tree] = cfg
	return nil
}

// MintGovernanceMetadata writes a new leaf into an empty slot.
func (p *Program) MintGovernanceMetadata(ctx context.Context, args MintArgs) (Mutation, error) {
	assetID, err := compression.AssetID(p.programID, args.Tree, args.Message.CompressedNFT)
	if err != nil {
		return Mutation{Kind: KindMint, State: Rejected}, err
	}
	dataHash, err := args.Message.DataHash()
	if err != nil {
		return Mutation{Kind: KindMint, State: Rejected}, err
	}
	next := compression.NewLeafSchemaV0(assetID, args.LeafOwner, args.LeafDelegate, args.Nonce, dataHash)
	return p.mutate(ctx, KindMint, args.LeafAccounts, args.Root, args.Index, args.Proof, compression.EmptyNode, next)
}

// ModifyGovernanceMetadata replaces the payload of an existing leaf.
func (p *Program) ModifyGovernanceMetadata(ctx context.Context, args ModifyArgs) (Mutation, error) {
	assetID, err := compression.AssetID(p.programID, args.Tree, args.Message.CompressedNFT)
	if err != nil {
		return Mutation{Kind: KindModify, State: Rejected}, err
	}
	dataHash, err := args.Message.DataHash()
	if err != nil {
		return Mutation{Kind: KindModify, State: Rejected}, err
	}
	previous := compression.NewLeafSchemaV0(assetID, args.LeafOwner, args.LeafDelegate, args.Nonce, args.DataHash)
	next := compression.NewLeafSchemaV0(assetID, args.LeafOwner, args.LeafDelegate, args.Nonce, dataHash)
	return p.mutate(ctx, KindModify, args.LeafAccounts, args.Root, args.Index, args.Proof, previous.Node(), next)
}

// RemoveGovernanceMetadata keeps the leaf identity but commits the empty
// data hash.
func (p *Program) RemoveGovernanceMetadata(ctx context.Context, args RemoveArgs) (Mutation, error) {
	previous := compression.NewLeafSchemaV0(args.AssetID, args.LeafOwner, args.LeafDelegate, args.Nonce, args.DataHash)
	next := compression.NewLeafSchemaV0(args.AssetID, args.LeafOwner, args.LeafDelegate, args.Nonce, compression.EmptyDataHash)
	return p.mutate(ctx, KindRemove, args.LeafAccounts, args.Root, args.Index, args.Proof, previous.Node(), next)
}

func (p *Program) mutate(
	ctx context.Context,
	kind MutationKind,
	accounts LeafAccounts,
	root compression.Hash,
	index uint32,
	proof []compression.Hash,
	previous compression.Hash,
	next compression.LeafSchema,
) (Mutation, error) {
	m := Mutation{
		Kind:         kind,
		Tree:         accounts.Tree,
		AssetID:      next.ID,
		Index:        index,
		Nonce:        next.Nonce,
		State:        Pending,
		PreviousNode: previous,
		NewNode:      next.Node(),
		DataHash:     next.DataHash,
	}
	reject := func(err error) (Mutation, error) {
		m.State = Rejected
		p.logger.Warn("governance metadata rejected",
			zap.String("kind", string(kind)),
			zap.Stringer("tree", accounts.Tree),
			zap.Uint32("index", index),
			zap.Error(err),
		)
		return m, err
	}

	cfg, ok := p.TreeConfig(accounts.Tree)
	if !ok {
		return reject(fmt.Errorf("%w: %s", compression.ErrTreeNotFound, accounts.Tree))
	}
	if err := cfg.Authorize(accounts.Signer); err != nil {
		return reject(err)
	}

	err := p.service.VerifyLeaf(ctx, compression.VerifyArgs{
		Tree:  accounts.Tree,
		Root:  root,
		Leaf:  previous,
		Index: index,
		Proof: proof,
	})
	if err != nil {
		return reject(fmt.Errorf("verify leaf: %w", err))
	}
	m.State = Verified

	authority, _, err := p.TreeAuthority(accounts.Tree)
	if err != nil {
		return reject(err)
	}
	err = p.service.ReplaceLeaf(ctx, authority, compression.ReplaceArgs{
		Tree:     accounts.Tree,
		Root:     root,
		Previous: previous,
		New:      m.NewNode,
		Index:    index,
		Proof:    proof,
	})
	if err != nil {
		return reject(fmt.Errorf("replace leaf: %w", err))
	}
	m.State = Replaced

	p.logger.Debug("governance metadata replaced",
		zap.String("kind", string(kind)),
		zap.Stringer("tree", accounts.Tree),
		zap.Stringer("asset_id", m.AssetID),
		zap.Uint32("index", index),
		zap.Stringer("node", m.NewNode),
	)
	return m, nil
}
