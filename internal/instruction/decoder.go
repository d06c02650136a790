package instruction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clad/internal/compression"
	"clad/internal/errkind"
	"clad/internal/fixedpoint"
	"clad/internal/model"
	"clad/internal/paralleltree"
)

var (
	ErrUnsupportedInstruction = errkind.New(errkind.Validation, "unsupported instruction")
	ErrMissingAccount         = errkind.New(errkind.Validation, "missing account")
	ErrInvalidAccount         = errkind.New(errkind.Validation, "invalid account")
	ErrInvalidArgs            = errkind.New(errkind.Validation, "invalid instruction args")
)

type decodeFunc func(record model.InstructionRecord) (Instruction, error)

// Decoder maps instruction names to their argument decoders.
type Decoder struct {
	decoders map[string]decodeFunc
}

func NewDecoder() *Decoder {
	return &Decoder{decoders: map[string]decodeFunc{
		NameInitializeGlobalpool:     decodeInitializeGlobalpool,
		NameUpdateLiquidity:          decodeUpdateLiquidity,
		NameModifyPosition:           decodeModifyPosition,
		NameUpdateAfterSwap:          decodeUpdateAfterSwap,
		NameUpdateAfterLoan:          decodeUpdateAfterLoan,
		NameCollectProtocolFees:      decodeCollectProtocolFees,
		NameCreateParallelTree:       decodeCreateParallelTree,
		NameSetTreeDelegate:          decodeSetTreeDelegate,
		NameMintGovernanceMetadata:   decodeMintGovernanceMetadata,
		NameModifyGovernanceMetadata: decodeModifyGovernanceMetadata,
		NameRemoveGovernanceMetadata: decodeRemoveGovernanceMetadata,
	}}
}

// CanDecode checks if the instruction name is supported.
func (d *Decoder) CanDecode(name string) bool {
	_, ok := d.decoders[normalizeName(name)]
	return ok
}

// Decode converts a record into a typed instruction.
func (d *Decoder) Decode(record model.InstructionRecord) (Instruction, error) {
	fn, ok := d.decoders[normalizeName(record.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInstruction, record.Name)
	}
	return fn(record)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type initializeArgs struct {
	TickSpacing     uint16 `json:"tick_spacing"`
	SqrtPrice       string `json:"sqrt_price"`
	FeeRate         uint16 `json:"fee_rate"`
	ProtocolFeeRate uint16 `json:"protocol_fee_rate"`
}

func decodeInitializeGlobalpool(record model.InstructionRecord) (Instruction, error) {
	var args initializeArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	sqrtPrice, err := parseUint128("sqrt_price", args.SqrtPrice)
	if err != nil {
		return nil, err
	}
	a := accountReader{record: record}
	ins := InitializeGlobalpool{
		FeeAuthority:    a.key("fee_authority"),
		TokenMintA:      a.key("token_mint_a"),
		TokenVaultA:     a.key("token_vault_a"),
		TokenMintB:      a.key("token_mint_b"),
		TokenVaultB:     a.key("token_vault_b"),
		TickSpacing:     args.TickSpacing,
		SqrtPrice:       sqrtPrice,
		FeeRate:         args.FeeRate,
		ProtocolFeeRate: args.ProtocolFeeRate,
	}
	return ins, a.err
}

type updateLiquidityArgs struct {
	Liquidity string `json:"liquidity"`
}

func decodeUpdateLiquidity(record model.InstructionRecord) (Instruction, error) {
	var args updateLiquidityArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	liquidity, err := parseUint128("liquidity", args.Liquidity)
	if err != nil {
		return nil, err
	}
	a := accountReader{record: record}
	ins := UpdateLiquidity{Globalpool: a.key("globalpool"), Liquidity: liquidity}
	return ins, a.err
}

type modifyPositionArgs struct {
	TickLower      int32             `json:"tick_lower"`
	TickUpper      int32             `json:"tick_upper"`
	LiquidityDelta fixedpoint.Int128 `json:"liquidity_delta"`
}

func decodeModifyPosition(record model.InstructionRecord) (Instruction, error) {
	var args modifyPositionArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	if args.TickLower >= args.TickUpper {
		return nil, fmt.Errorf("%w: tick_lower %d must be below tick_upper %d", ErrInvalidArgs, args.TickLower, args.TickUpper)
	}
	a := accountReader{record: record}
	ins := ModifyPosition{
		Globalpool:     a.key("globalpool"),
		TickLower:      args.TickLower,
		TickUpper:      args.TickUpper,
		LiquidityDelta: args.LiquidityDelta,
	}
	return ins, a.err
}

type swapArgs struct {
	LiquidityAvailable string `json:"liquidity_available"`
	TickIndex          int32  `json:"tick_index"`
	SqrtPrice          string `json:"sqrt_price"`
	FeeGrowthGlobal    string `json:"fee_growth_global"`
	ProtocolFee        uint64 `json:"protocol_fee"`
	IsTokenFeeInA      bool   `json:"is_token_fee_in_a"`
}

func decodeUpdateAfterSwap(record model.InstructionRecord) (Instruction, error) {
	var args swapArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	liquidity, err := parseUint128("liquidity_available", args.LiquidityAvailable)
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := parseUint128("sqrt_price", args.SqrtPrice)
	if err != nil {
		return nil, err
	}
	growth, err := parseUint128("fee_growth_global", args.FeeGrowthGlobal)
	if err != nil {
		return nil, err
	}
	a := accountReader{record: record}
	ins := UpdateAfterSwap{
		Globalpool:         a.key("globalpool"),
		LiquidityAvailable: liquidity,
		TickIndex:          args.TickIndex,
		SqrtPrice:          sqrtPrice,
		FeeGrowthGlobal:    growth,
		ProtocolFee:        args.ProtocolFee,
		IsTokenFeeInA:      args.IsTokenFeeInA,
	}
	return ins, a.err
}

type loanArgs struct {
	LiquidityDelta fixedpoint.Int128 `json:"liquidity_delta"`
	InterestAmount uint64            `json:"interest_amount"`
	IsTokenFeeInA  bool              `json:"is_token_fee_in_a"`
}

func decodeUpdateAfterLoan(record model.InstructionRecord) (Instruction, error) {
	var args loanArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	a := accountReader{record: record}
	ins := UpdateAfterLoan{
		Globalpool:     a.key("globalpool"),
		LiquidityDelta: args.LiquidityDelta,
		InterestAmount: args.InterestAmount,
		IsTokenFeeInA:  args.IsTokenFeeInA,
	}
	return ins, a.err
}

func decodeCollectProtocolFees(record model.InstructionRecord) (Instruction, error) {
	a := accountReader{record: record}
	ins := CollectProtocolFees{Globalpool: a.key("globalpool")}
	return ins, a.err
}

type createTreeArgs struct {
	MaxDepth    uint32 `json:"max_depth"`
	CanopyDepth uint32 `json:"canopy_depth"`
	Public      *bool  `json:"public"`
}

func decodeCreateParallelTree(record model.InstructionRecord) (Instruction, error) {
	var args createTreeArgs
	if err := decodeArgs(record, &args); err != nil {
		return nil, err
	}
	a := accountReader{record: record}
	ins := CreateParallelTree{
		Tree:        a.key("tree"),
		Creator:     a.key("tree_creator"),
		MaxDepth:    args.MaxDepth,
		CanopyDepth: args.CanopyDepth,
		Public:      args.Public,
	}
	return ins, a.err
}

func decodeSetTreeDelegate(record model.InstructionRecord) (Instruction, error) {
	a := accountReader{record: record}
	ins := SetTreeDelegate{
		Tree:     a.key("tree"),
		Creator:  a.key("tree_creator"),
		Delegate: a.key("new_tree_delegate"),
	}
	return ins, a.err
}

type leafArgs struct {
	Root     *compression.Hash                `json:"root"`
	Proof    []compression.Hash               `json:"proof"`
	Nonce    uint64                           `json:"nonce"`
	Index    uint32                           `json:"index"`
	DataHash *compression.Hash                `json:"data_hash"`
	Message  *paralleltree.GovernanceMetadata `json:"message"`
	AssetID  *solana.PublicKey                `json:"asset_id"`
}

func decodeLeaf(record model.InstructionRecord, needDataHash, needMessage bool) (leafArgs, paralleltree.LeafAccounts, error) {
	var args leafArgs
	if err := decodeArgs(record, &args); err != nil {
		return args, paralleltree.LeafAccounts{}, err
	}
	if needDataHash && args.DataHash == nil {
		return args, paralleltree.LeafAccounts{}, fmt.Errorf("%w: data_hash is required", ErrInvalidArgs)
	}
	if needMessage && args.Message == nil {
		return args, paralleltree.LeafAccounts{}, fmt.Errorf("%w: message is required", ErrInvalidArgs)
	}
	a := accountReader{record: record}
	owner := a.key("leaf_owner")
	accounts := paralleltree.LeafAccounts{
		Tree:         a.key("tree"),
		LeafOwner:    owner,
		LeafDelegate: a.keyOr("leaf_delegate", owner),
		Signer:       a.key("signer"),
	}
	return args, accounts, a.err
}

func decodeMintGovernanceMetadata(record model.InstructionRecord) (Instruction, error) {
	args, accounts, err := decodeLeaf(record, false, true)
	if err != nil {
		return nil, err
	}
	return MintGovernanceMetadata{
		Accounts:   accounts,
		ProofInput: ProofInput{Root: args.Root, Proof: args.Proof},
		Nonce:      args.Nonce,
		Index:      args.Index,
		Message:    *args.Message,
	}, nil
}

func decodeModifyGovernanceMetadata(record model.InstructionRecord) (Instruction, error) {
	args, accounts, err := decodeLeaf(record, true, true)
	if err != nil {
		return nil, err
	}
	return ModifyGovernanceMetadata{
		Accounts:   accounts,
		ProofInput: ProofInput{Root: args.Root, Proof: args.Proof},
		Nonce:      args.Nonce,
		Index:      args.Index,
		DataHash:   *args.DataHash,
		Message:    *args.Message,
	}, nil
}

func decodeRemoveGovernanceMetadata(record model.InstructionRecord) (Instruction, error) {
	args, accounts, err := decodeLeaf(record, true, false)
	if err != nil {
		return nil, err
	}
	if args.AssetID == nil {
		return nil, fmt.Errorf("%w: asset_id is required", ErrInvalidArgs)
	}
	return RemoveGovernanceMetadata{
		Accounts:   accounts,
		ProofInput: ProofInput{Root: args.Root, Proof: args.Proof},
		Nonce:      args.Nonce,
		Index:      args.Index,
		DataHash:   *args.DataHash,
		AssetID:    *args.AssetID,
	}, nil
}

func decodeArgs(record model.InstructionRecord, out interface{}) error {
	if len(bytes.TrimSpace(record.Args)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(record.Args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgs, record.Name, err)
	}
	return nil
}

func parseUint128(field, value string) (uint128.Uint128, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uint128.Zero, nil
	}
	v, err := uint128.FromString(value)
	if err != nil {
		return uint128.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, field, err)
	}
	return v, nil
}

// accountReader resolves named accounts, keeping the first failure.
type accountReader struct {
	record model.InstructionRecord
	err    error
}

func (a *accountReader) key(name string) solana.PublicKey {
	raw, ok := a.record.Accounts[name]
	if !ok || strings.TrimSpace(raw) == "" {
		if a.err == nil {
			a.err = fmt.Errorf("%w: %s in %s", ErrMissingAccount, name, a.record.Name)
		}
		return solana.PublicKey{}
	}
	return a.parse(name, raw)
}

func (a *accountReader) keyOr(name string, fallback solana.PublicKey) solana.PublicKey {
	raw, ok := a.record.Accounts[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	return a.parse(name, raw)
}

func (a *accountReader) parse(name, raw string) solana.PublicKey {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw))
	if err != nil {
		if a.err == nil {
			a.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidAccount, name, raw, err)
		}
		return solana.PublicKey{}
	}
	return pk
}
