package ledger

import (
	"github.com/gagliardetto/solana-go"

	"clad/internal/compression"
	"clad/internal/globalpool"
	"clad/internal/model"
	"clad/internal/paralleltree"
)

// GlobalpoolRecord flattens a pool into its JSON record.
func GlobalpoolRecord(addr solana.PublicKey, pool *globalpool.Globalpool) model.GlobalpoolRecord {
	return model.GlobalpoolRecord{
		Address:            addr.String(),
		Lifecycle:          pool.Lifecycle.String(),
		TokenMintA:         pool.TokenMintA.String(),
		TokenMintB:         pool.TokenMintB.String(),
		TokenVaultA:        pool.TokenVaultA.String(),
		TokenVaultB:        pool.TokenVaultB.String(),
		FeeAuthority:       pool.FeeAuthority.String(),
		TickSpacing:        pool.TickSpacing,
		FeeRate:            pool.FeeRate,
		ProtocolFeeRate:    pool.ProtocolFeeRate,
		LiquidityAvailable: pool.LiquidityAvailable.String(),
		LiquidityBorrowed:  pool.LiquidityBorrowed.String(),
		SqrtPrice:          pool.SqrtPrice.String(),
		TickCurrentIndex:   pool.TickCurrentIndex,
		FeeGrowthGlobalA:   pool.FeeGrowthGlobalA.String(),
		FeeGrowthGlobalB:   pool.FeeGrowthGlobalB.String(),
		ProtocolFeeOwedA:   pool.ProtocolFeeOwedA,
		ProtocolFeeOwedB:   pool.ProtocolFeeOwedB,
		InceptionTime:      pool.InceptionTime,
	}
}

// TreeRecord joins a tree summary with its config.
func TreeRecord(info compression.TreeInfo, cfg paralleltree.TreeConfig) model.TreeRecord {
	return model.TreeRecord{
		Address:     info.Tree.String(),
		Authority:   info.Authority.String(),
		Creator:     cfg.TreeCreator.String(),
		Delegate:    cfg.TreeDelegate.String(),
		IsPublic:    cfg.IsPublic,
		MaxDepth:    info.MaxDepth,
		CanopyDepth: info.CanopyDepth,
		Root:        info.Root.String(),
		Sequence:    info.Sequence,
	}
}

func MutationRecord(record model.InstructionRecord, m paralleltree.Mutation) model.LeafMutationRecord {
	return model.LeafMutationRecord{
		Seq:          record.Seq,
		Slot:         record.Slot,
		Signature:    record.Signature,
		Kind:         string(m.Kind),
		Tree:         m.Tree.String(),
		AssetID:      m.AssetID.String(),
		LeafIndex:    m.Index,
		Nonce:        m.Nonce,
		State:        m.State.String(),
		PreviousNode: m.PreviousNode.String(),
		NewNode:      m.NewNode.String(),
		DataHash:     m.DataHash.String(),
	}
}
