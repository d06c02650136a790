package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"clad/internal/chain"
	"clad/internal/config"
	"clad/internal/globalpool"
	"clad/internal/ledger"
	"clad/internal/paralleltree"
)

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}
	address, err := solana.PublicKeyFromBase58(cfg.Address)
	if err != nil {
		return fmt.Errorf("parse address: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(cfg.RPCURL, chain.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	account, err := client.AccountData(ctx, address)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}

	return printAccount(cmd.OutOrStdout(), cfg.Kind, account)
}

type inspectOutput struct {
	Address string      `json:"address"`
	Owner   string      `json:"owner"`
	Slot    uint64      `json:"slot"`
	Kind    string      `json:"kind"`
	Account interface{} `json:"account"`
}

func printAccount(w io.Writer, kind string, account chain.Account) error {
	out := inspectOutput{
		Address: account.Address.String(),
		Owner:   account.Owner.String(),
		Slot:    account.Slot,
		Kind:    kind,
	}

	switch kind {
	case config.KindGlobalpool:
		var pool globalpool.Globalpool
		if err := pool.UnmarshalBinary(account.Data); err != nil {
			return fmt.Errorf("decode globalpool: %w", err)
		}
		out.Account = ledger.GlobalpoolRecord(account.Address, &pool)
	case config.KindTreeConfig:
		var cfg paralleltree.TreeConfig
		if err := cfg.UnmarshalBinary(account.Data); err != nil {
			return fmt.Errorf("decode tree config: %w", err)
		}
		out.Account = cfg
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
