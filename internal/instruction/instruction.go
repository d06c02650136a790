// Package instruction turns captured instruction records into typed calls
// for the globalpool and parallel tree engines.
package instruction

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clad/internal/compression"
	"clad/internal/fixedpoint"
	"clad/internal/paralleltree"
)

// Instruction names as they appear in records.
const (
	NameInitializeGlobalpool     = "initialize_globalpool"
	NameUpdateLiquidity          = "update_liquidity"
	NameModifyPosition           = "modify_position"
	NameUpdateAfterSwap          = "update_after_swap"
	NameUpdateAfterLoan          = "update_after_loan"
	NameCollectProtocolFees      = "collect_protocol_fees"
	NameCreateParallelTree       = "create_parallel_tree"
	NameSetTreeDelegate          = "set_tree_delegate"
	NameMintGovernanceMetadata   = "mint_governance_metadata"
	NameModifyGovernanceMetadata = "modify_governance_metadata"
	NameRemoveGovernanceMetadata = "remove_governance_metadata"
)

// Instruction is a decoded call.
type Instruction interface {
	Name() string
}

type InitializeGlobalpool struct {
	FeeAuthority    solana.PublicKey
	TokenMintA      solana.PublicKey
	TokenVaultA     solana.PublicKey
	TokenMintB      solana.PublicKey
	TokenVaultB     solana.PublicKey
	TickSpacing     uint16
	SqrtPrice       uint128.Uint128
	FeeRate         uint16
	ProtocolFeeRate uint16
}

type UpdateLiquidity struct {
	Globalpool solana.PublicKey
	Liquidity  uint128.Uint128
}

// ModifyPosition opens, grows, shrinks or closes a position over
// [TickLower, TickUpper).
type ModifyPosition struct {
	Globalpool     solana.PublicKey
	TickLower      int32
	TickUpper      int32
	LiquidityDelta fixedpoint.Int128
}

type UpdateAfterSwap struct {
	Globalpool         solana.PublicKey
	LiquidityAvailable uint128.Uint128
	TickIndex          int32
	SqrtPrice          uint128.Uint128
	FeeGrowthGlobal    uint128.Uint128
	ProtocolFee        uint64
	IsTokenFeeInA      bool
}

type UpdateAfterLoan struct {
	Globalpool     solana.PublicKey
	LiquidityDelta fixedpoint.Int128
	InterestAmount uint64
	IsTokenFeeInA  bool
}

type CollectProtocolFees struct {
	Globalpool solana.PublicKey
}

type CreateParallelTree struct {
	Tree        solana.PublicKey
	Creator     solana.PublicKey
	MaxDepth    uint32
	CanopyDepth uint32
	Public      *bool
}

type SetTreeDelegate struct {
	Tree     solana.PublicKey
	Creator  solana.PublicKey
	Delegate solana.PublicKey
}

// ProofInput is the root and proof of a leaf mutation. A nil Root asks the
// ledger to fill both from its own tree.
type ProofInput struct {
	Root  *compression.Hash
	Proof []compression.Hash
}

type MintGovernanceMetadata struct {
	Accounts paralleltree.LeafAccounts
	ProofInput
	Nonce   uint64
	Index   uint32
	Message paralleltree.GovernanceMetadata
}

type ModifyGovernanceMetadata struct {
	Accounts paralleltree.LeafAccounts
	ProofInput
	Nonce    uint64
	Index    uint32
	DataHash compression.Hash
	Message  paralleltree.GovernanceMetadata
}

type RemoveGovernanceMetadata struct {
	Accounts paralleltree.LeafAccounts
	ProofInput
	Nonce    uint64
	Index    uint32
	DataHash compression.Hash
	AssetID  solana.PublicKey
}

func (InitializeGlobalpool) Name() string { return NameInitializeGlobalpool }
func (UpdateLiquidity) Name() string { return NameUpdateLiquidity }
func (ModifyPosition) Name() string { return NameModifyPosition }
func (UpdateAfterSwap) Name() string { return NameUpdateAfterSwap }
func (UpdateAfterLoan) Name() string { return NameUpdateAfterLoan }
func (CollectProtocolFees) Name() string { return NameCollectProtocolFees }
func (CreateParallelTree) Name() string { return NameCreateParallelTree }
func (SetTreeDelegate) Name() string { return NameSetTreeDelegate }
func (MintGovernanceMetadata) Name() string { return NameMintGovernanceMetadata }
func (ModifyGovernanceMetadata) Name() string { return NameModifyGovernanceMetadata }
func (RemoveGovernanceMetadata) Name() string { return NameRemoveGovernanceMetadata }
