package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"clad/internal/chain"
	"clad/internal/config"
	"clad/internal/fixedpoint"
	"clad/internal/globalpool"
	"clad/internal/paralleltree"
)

func TestPrintGlobalpool(t *testing.T) {
	var mintA, mintB solana.PublicKey
	mintA[0], mintB[0] = 1, 2
	var pool globalpool.Globalpool
	err := pool.Initialize(globalpool.InitializeParams{
		TickSpacing:     64,
		SqrtPrice:       fixedpoint.One,
		FeeRate:         3000,
		ProtocolFeeRate: 300,
		TokenMintA:      mintA,
		TokenMintB:      mintB,
		InceptionTime:   1,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	data, err := pool.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var buf bytes.Buffer
	account := chain.Account{Address: solana.SystemProgramID, Owner: solana.SystemProgramID, Slot: 5, Data: data}
	if err := printAccount(&buf, config.KindGlobalpool, account); err != nil {
		t.Fatalf("print: %v", err)
	}

	var out struct {
		Slot    uint64 `json:"slot"`
		Account struct {
			SqrtPrice string `json:"sqrt_price"`
			FeeRate   uint16 `json:"fee_rate"`
			Lifecycle string `json:"lifecycle"`
		} `json:"account"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if out.Slot != 5 || out.Account.SqrtPrice != "18446744073709551616" || out.Account.FeeRate != 3000 || out.Account.Lifecycle != "active" {
		t.Fatalf("output mismatch: %s", buf.String())
	}
}

func TestPrintTreeConfig(t *testing.T) {
	cfg := paralleltree.TreeConfig{TreeCreator: solana.SystemProgramID, TreeDelegate: solana.SystemProgramID, IsPublic: true}
	data, err := cfg.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var buf bytes.Buffer
	if err := printAccount(&buf, config.KindTreeConfig, chain.Account{Data: data}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), `"is_public": true`) {
		t.Fatalf("output mismatch: %s", buf.String())
	}
}

func TestPrintRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	if err := printAccount(&buf, config.KindGlobalpool, chain.Account{Data: []byte{1, 2, 3}}); err == nil {
		t.Fatalf("expected decode error")
	}
}
