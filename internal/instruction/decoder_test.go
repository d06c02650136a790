package instruction

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"clad/internal/compression"
	"clad/internal/errkind"
	"clad/internal/model"
)

func testKey(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func TestDecodeInitializeGlobalpool(t *testing.T) {
	record := model.InstructionRecord{
		Seq:  1,
		Name: NameInitializeGlobalpool,
		Accounts: map[string]string{
			"fee_authority": testKey(9).String(),
			"token_mint_a":  testKey(1).String(),
			"token_vault_a": testKey(3).String(),
			"token_mint_b":  testKey(2).String(),
			"token_vault_b": testKey(4).String(),
		},
		Args: json.RawMessage(`{"tick_spacing":64,"sqrt_price":"18446744073709551616","fee_rate":3000,"protocol_fee_rate":300}`),
	}

	ins, err := NewDecoder().Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := ins.(InitializeGlobalpool)
	if !ok {
		t.Fatalf("unexpected type %T", ins)
	}
	if got.TokenMintA != testKey(1) || got.TokenMintB != testKey(2) || got.FeeAuthority != testKey(9) {
		t.Fatalf("accounts mismatch: %+v", got)
	}
	if got.SqrtPrice.Hi != 1 || got.SqrtPrice.Lo != 0 {
		t.Fatalf("sqrt price mismatch: %s", got.SqrtPrice)
	}
	if got.TickSpacing != 64 || got.FeeRate != 3000 || got.ProtocolFeeRate != 300 {
		t.Fatalf("args mismatch: %+v", got)
	}
}

func TestDecodeModifyPositionNegativeDelta(t *testing.T) {
	record := model.InstructionRecord{
		Name:     "Modify_Position",
		Accounts: map[string]string{"globalpool": testKey(5).String()},
		Args:     json.RawMessage(`{"tick_lower":-128,"tick_upper":128,"liquidity_delta":"-500"}`),
	}
	ins, err := NewDecoder().Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := ins.(ModifyPosition)
	if got.LiquidityDelta.String() != "-500" {
		t.Fatalf("delta mismatch: %s", got.LiquidityDelta)
	}
	if got.TickLower != -128 || got.TickUpper != 128 {
		t.Fatalf("ticks mismatch: %+v", got)
	}
}

func TestDecodeModifyPositionInvertedRange(t *testing.T) {
	record := model.InstructionRecord{
		Name:     NameModifyPosition,
		Accounts: map[string]string{"globalpool": testKey(5).String()},
		Args:     json.RawMessage(`{"tick_lower":10,"tick_upper":10,"liquidity_delta":"1"}`),
	}
	_, err := NewDecoder().Decode(record)
	if !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected invalid args, got %v", err)
	}
}

func TestDecodeMintWithoutProofUsesAutoProof(t *testing.T) {
	owner := testKey(7)
	record := model.InstructionRecord{
		Name: NameMintGovernanceMetadata,
		Accounts: map[string]string{
			"tree":       testKey(1).String(),
			"leaf_owner": owner.String(),
			"signer":     testKey(2).String(),
		},
		Args: json.RawMessage(`{"nonce":3,"index":3,"message":{"compressed_nft":"` + testKey(8).String() +
			`","realm":"` + testKey(9).String() +
			`","governing_token_owner":"` + owner.String() +
			`","proposal":"` + testKey(10).String() + `","vote_weight":42}}`),
	}
	ins, err := NewDecoder().Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := ins.(MintGovernanceMetadata)
	if got.Root != nil || got.Proof != nil {
		t.Fatalf("expected empty proof input, got %+v", got.ProofInput)
	}
	if got.Accounts.LeafDelegate != owner {
		t.Fatalf("delegate should default to owner")
	}
	if got.Message.VoteWeight != 42 || got.Message.CompressedNFT != testKey(8) {
		t.Fatalf("message mismatch: %+v", got.Message)
	}
}

func TestDecodeRemoveWithExplicitProof(t *testing.T) {
	root := compression.HashData([]byte("root"))
	sibling := compression.HashData([]byte("sibling"))
	dataHash := compression.HashData([]byte("data"))
	args := map[string]interface{}{
		"root":      root,
		"proof":     []compression.Hash{sibling},
		"nonce":     1,
		"index":     1,
		"data_hash": dataHash,
		"asset_id":  testKey(4),
	}
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	record := model.InstructionRecord{
		Name: NameRemoveGovernanceMetadata,
		Accounts: map[string]string{
			"tree":          testKey(1).String(),
			"leaf_owner":    testKey(2).String(),
			"leaf_delegate": testKey(3).String(),
			"signer":        testKey(2).String(),
		},
		Args: raw,
	}
	ins, err := NewDecoder().Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := ins.(RemoveGovernanceMetadata)
	if got.Root == nil || *got.Root != root {
		t.Fatalf("root mismatch")
	}
	if len(got.Proof) != 1 || got.Proof[0] != sibling {
		t.Fatalf("proof mismatch: %v", got.Proof)
	}
	if got.DataHash != dataHash || got.AssetID != testKey(4) || got.Accounts.LeafDelegate != testKey(3) {
		t.Fatalf("fields mismatch: %+v", got)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name   string
		record model.InstructionRecord
		want   error
	}{
		{
			name:   "unknown",
			record: model.InstructionRecord{Name: "swap"},
			want:   ErrUnsupportedInstruction,
		},
		{
			name:   "missing account",
			record: model.InstructionRecord{Name: NameCollectProtocolFees},
			want:   ErrMissingAccount,
		},
		{
			name: "bad account",
			record: model.InstructionRecord{
				Name:     NameCollectProtocolFees,
				Accounts: map[string]string{"globalpool": "not-base58-0OIl"},
			},
			want: ErrInvalidAccount,
		},
		{
			name: "unknown arg",
			record: model.InstructionRecord{
				Name:     NameUpdateLiquidity,
				Accounts: map[string]string{"globalpool": testKey(1).String()},
				Args:     json.RawMessage(`{"liquidity":"1","extra":true}`),
			},
			want: ErrInvalidArgs,
		},
		{
			name: "bad uint128",
			record: model.InstructionRecord{
				Name:     NameUpdateLiquidity,
				Accounts: map[string]string{"globalpool": testKey(1).String()},
				Args:     json.RawMessage(`{"liquidity":"-1"}`),
			},
			want: ErrInvalidArgs,
		},
		{
			name: "remove without asset",
			record: model.InstructionRecord{
				Name:     NameRemoveGovernanceMetadata,
				Accounts: map[string]string{"tree": testKey(1).String(), "leaf_owner": testKey(2).String(), "signer": testKey(2).String()},
				Args:     json.RawMessage(`{"data_hash":"0x` + "00000000000000000000000000000000000000000000000000000000000000aa" + `"}`),
			},
			want: ErrInvalidArgs,
		},
	}

	decoder := NewDecoder()
	for _, tc := range cases {
		_, err := decoder.Decode(tc.record)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !errors.Is(err, errkind.Validation) {
			t.Fatalf("%s: expected validation kind, got %v", tc.name, err)
		}
	}
}

func TestCanDecode(t *testing.T) {
	decoder := NewDecoder()
	if !decoder.CanDecode(" update_after_swap ") {
		t.Fatalf("expected update_after_swap to be supported")
	}
	if decoder.CanDecode("transfer") {
		t.Fatalf("transfer should not be supported")
	}
}
