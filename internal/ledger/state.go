// Package ledger replays decoded instructions against in-memory globalpool
// and parallel tree state.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"clad/internal/compression"
	"clad/internal/globalpool"
	"clad/internal/instruction"
	"clad/internal/model"
	"clad/internal/paralleltree"
)

// StateConfig selects the programs whose accounts the state tracks.
type StateConfig struct {
	ProgramID     solana.PublicKey
	TreeProgramID solana.PublicKey
	// AutoProof fills a missing root and proof from the local tree.
	AutoProof bool
}

// State holds every pool and tree seen so far. It is not safe for
// concurrent use.
type State struct {
	cfg     StateConfig
	pools   map[solana.PublicKey]*globalpool.Globalpool
	trees   *compression.MemoryService
	program *paralleltree.Program
	logger  *zap.Logger

	dirtyPools map[solana.PublicKey]struct{}
	dirtyTrees map[solana.PublicKey]struct{}
	mutations  []model.LeafMutationRecord
}

func NewState(cfg StateConfig, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	trees := compression.NewMemoryService()
	return &State{
		cfg:        cfg,
		pools:      make(map[solana.PublicKey]*globalpool.Globalpool),
		trees:      trees,
		program:    paralleltree.NewProgram(cfg.TreeProgramID, trees, logger.Named("paralleltree")),
		logger:     logger,
		dirtyPools: make(map[solana.PublicKey]struct{}),
		dirtyTrees: make(map[solana.PublicKey]struct{}),
	}
}

// Pool returns a copy of the pool stored at addr.
func (s *State) Pool(addr solana.PublicKey) (globalpool.Globalpool, bool) {
	pool, ok := s.pools[addr]
	if !ok {
		return globalpool.Globalpool{}, false
	}
	return *pool, true
}

func (s *State) Trees() *compression.MemoryService {
	return s.trees
}

func (s *State) Program() *paralleltree.Program {
	return s.program
}

// Apply runs one instruction. A failed instruction leaves the state as it
// was.
func (s *State) Apply(ctx context.Context, record model.InstructionRecord, ins instruction.Instruction) error {
	switch in := ins.(type) {
	case instruction.InitializeGlobalpool:
		return s.initializeGlobalpool(record, in)
	case instruction.UpdateLiquidity:
		return s.withPool(in.Globalpool, func(pool *globalpool.Globalpool) error {
			return pool.UpdateLiquidity(in.Liquidity)
		})
	case instruction.ModifyPosition:
		return s.withPool(in.Globalpool, func(pool *globalpool.Globalpool) error {
			next, err := globalpool.NextGlobalpoolLiquidity(pool, in.TickUpper, in.TickLower, in.LiquidityDelta)
			if err != nil {
				return err
			}
			return pool.UpdateLiquidity(next)
		})
	case instruction.UpdateAfterSwap:
		return s.withPool(in.Globalpool, func(pool *globalpool.Globalpool) error {
			return pool.UpdateAfterSwap(globalpool.SwapUpdate{
				LiquidityAvailable: in.LiquidityAvailable,
				TickIndex:          in.TickIndex,
				SqrtPrice:          in.SqrtPrice,
				FeeGrowthGlobal:    in.FeeGrowthGlobal,
				ProtocolFee:        in.ProtocolFee,
				IsTokenFeeInA:      in.IsTokenFeeInA,
			})
		})
	case instruction.UpdateAfterLoan:
		return s.withPool(in.Globalpool, func(pool *globalpool.Globalpool) error {
			if err := pool.UpdateAfterLoan(in.LiquidityDelta, in.InterestAmount, in.IsTokenFeeInA); err != nil {
				return err
			}
			s.logger.Info("loan applied",
				zap.Stringer("globalpool", in.Globalpool),
				zap.Stringer("liquidity_delta", in.LiquidityDelta),
				zap.Stringer("liquidity_available", pool.LiquidityAvailable),
				zap.Stringer("liquidity_borrowed", pool.LiquidityBorrowed),
				zap.Uint64("interest_amount", in.InterestAmount),
			)
			return nil
		})
	case instruction.CollectProtocolFees:
		return s.withPool(in.Globalpool, func(pool *globalpool.Globalpool) error {
			owedA, owedB, err := pool.ResetProtocolFeesOwed()
			if err != nil {
				return err
			}
			s.logger.Info("protocol fees collected",
				zap.Stringer("globalpool", in.Globalpool),
				zap.Uint64("owed_a", owedA),
				zap.Uint64("owed_b", owedB),
			)
			return nil
		})
	case instruction.CreateParallelTree:
		_, err := s.program.CreateParallelTree(ctx, paralleltree.CreateTreeArgs{
			Tree:        in.Tree,
			Creator:     in.Creator,
			MaxDepth:    in.MaxDepth,
			CanopyDepth: in.CanopyDepth,
			Public:      in.Public,
		})
		if err != nil {
			return err
		}
		s.dirtyTrees[in.Tree] = struct{}{}
		return nil
	case instruction.SetTreeDelegate:
		if err := s.program.SetTreeDelegate(in.Tree, in.Creator, in.Delegate); err != nil {
			return err
		}
		s.dirtyTrees[in.Tree] = struct{}{}
		return nil
	case instruction.MintGovernanceMetadata:
		root, proof, err := s.resolveProof(in.Accounts.Tree, in.Index, in.ProofInput)
		if err != nil {
			return err
		}
		m, err := s.program.MintGovernanceMetadata(ctx, paralleltree.MintArgs{
			LeafAccounts: in.Accounts,
			Root:         root,
			Nonce:        in.Nonce,
			Index:        in.Index,
			Message:      in.Message,
			Proof:        proof,
		})
		return s.recordMutation(record, m, err)
	case instruction.ModifyGovernanceMetadata:
		root, proof, err := s.resolveProof(in.Accounts.Tree, in.Index, in.ProofInput)
		if err != nil {
			return err
		}
		m, err := s.program.ModifyGovernanceMetadata(ctx, paralleltree.ModifyArgs{
			LeafAccounts: in.Accounts,
			Root:         root,
			DataHash:     in.DataHash,
			Nonce:        in.Nonce,
			Index:        in.Index,
			Message:      in.Message,
			Proof:        proof,
		})
		return s.recordMutation(record, m, err)
	case instruction.RemoveGovernanceMetadata:
		root, proof, err := s.resolveProof(in.Accounts.Tree, in.Index, in.ProofInput)
		if err != nil {
			return err
		}
		m, err := s.program.RemoveGovernanceMetadata(ctx, paralleltree.RemoveArgs{
			LeafAccounts: in.Accounts,
			Root:         root,
			DataHash:     in.DataHash,
			Nonce:        in.Nonce,
			Index:        in.Index,
			AssetID:      in.AssetID,
			Proof:        proof,
		})
		return s.recordMutation(record, m, err)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownInstruction, ins)
	}
}

func (s *State) initializeGlobalpool(record model.InstructionRecord, in instruction.InitializeGlobalpool) error {
	addr, bump, err := globalpool.DeriveAddress(s.cfg.ProgramID, in.TokenMintA, in.TokenMintB, in.FeeRate, in.TickSpacing)
	if err != nil {
		return err
	}
	var pool globalpool.Globalpool
	if existing, ok := s.pools[addr]; ok {
		pool = *existing
	}
	err = pool.Initialize(globalpool.InitializeParams{
		Bump:            bump,
		TickSpacing:     in.TickSpacing,
		SqrtPrice:       in.SqrtPrice,
		FeeRate:         in.FeeRate,
		ProtocolFeeRate: in.ProtocolFeeRate,
		FeeAuthority:    in.FeeAuthority,
		TokenMintA:      in.TokenMintA,
		TokenVaultA:     in.TokenVaultA,
		TokenMintB:      in.TokenMintB,
		TokenVaultB:     in.TokenVaultB,
		InceptionTime:   record.Timestamp,
	})
	if err != nil {
		return err
	}
	s.pools[addr] = &pool
	s.dirtyPools[addr] = struct{}{}
	s.logger.Info("globalpool initialized",
		zap.Stringer("globalpool", addr),
		zap.Stringer("token_mint_a", in.TokenMintA),
		zap.Stringer("token_mint_b", in.TokenMintB),
		zap.Uint16("fee_rate", in.FeeRate),
		zap.Uint16("tick_spacing", in.TickSpacing),
		zap.Int32("tick_current_index", pool.TickCurrentIndex),
	)
	return nil
}

// withPool runs fn on a copy of the pool and keeps the copy only on success.
func (s *State) withPool(addr solana.PublicKey, fn func(pool *globalpool.Globalpool) error) error {
	current, ok := s.pools[addr]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, addr)
	}
	next := *current
	if err := fn(&next); err != nil {
		return err
	}
	*current = next
	s.dirtyPools[addr] = struct{}{}
	return nil
}

func (s *State) resolveProof(tree solana.PublicKey, index uint32, in instruction.ProofInput) (compression.Hash, []compression.Hash, error) {
	if in.Root != nil {
		return *in.Root, in.Proof, nil
	}
	if !s.cfg.AutoProof {
		return compression.Hash{}, nil, ErrProofRequired
	}
	root, err := s.trees.Root(tree)
	if err != nil {
		return compression.Hash{}, nil, err
	}
	proof, err := s.trees.Proof(tree, index)
	if err != nil {
		return compression.Hash{}, nil, err
	}
	return root, proof, nil
}

func (s *State) recordMutation(record model.InstructionRecord, m paralleltree.Mutation, err error) error {
	if err != nil {
		return err
	}
	s.mutations = append(s.mutations, MutationRecord(record, m))
	s.dirtyTrees[m.Tree] = struct{}{}
	return nil
}

// Drain returns snapshots of every account touched since the last drain,
// ordered by address, and the mutations recorded in that span.
func (s *State) Drain(seq, slot uint64, takenAt time.Time) ([]model.AccountSnapshot, []model.LeafMutationRecord, error) {
	stamp := takenAt.UTC().Format(time.RFC3339Nano)
	snapshots := make([]model.AccountSnapshot, 0, len(s.dirtyPools)+len(s.dirtyTrees))

	for _, addr := range sortedKeys(s.dirtyPools) {
		record := GlobalpoolRecord(addr, s.pools[addr])
		snapshots = append(snapshots, model.AccountSnapshot{
			Seq:        seq,
			Slot:       slot,
			Kind:       model.KindGlobalpool,
			Address:    record.Address,
			Globalpool: &record,
			TakenAt:    stamp,
		})
	}
	for _, addr := range sortedKeys(s.dirtyTrees) {
		info, err := s.trees.Info(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot tree %s: %w", addr, err)
		}
		cfg, _ := s.program.TreeConfig(addr)
		record := TreeRecord(info, cfg)
		snapshots = append(snapshots, model.AccountSnapshot{
			Seq:     seq,
			Slot:    slot,
			Kind:    model.KindTree,
			Address: record.Address,
			Tree:    &record,
			TakenAt: stamp,
		})
	}

	mutations := s.mutations
	s.mutations = nil
	s.dirtyPools = make(map[solana.PublicKey]struct{})
	s.dirtyTrees = make(map[solana.PublicKey]struct{})
	return snapshots, mutations, nil
}

func sortedKeys(set map[solana.PublicKey]struct{}) []solana.PublicKey {
	keys := make([]solana.PublicKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
