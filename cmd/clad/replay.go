package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clad/internal/config"
	"clad/internal/ledger"
	"clad/internal/storage"
	"clad/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
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
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("parse program id: %w", err)
	}
	treeProgramID, err := solana.PublicKeyFromBase58(cfg.TreeProgramID)
	if err != nil {
		return fmt.Errorf("parse tree program id: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks storage.Fanout
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out, cfg.Mutations))
	}

	var checkpoint ledger.CheckpointStore = ledger.NewFileCheckpoint(cfg.Checkpoint, cfg.CheckpointEnabled)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
		if cfg.CheckpointEnabled {
			checkpoint = ledger.NewStateCheckpoint(store, cfg.CheckpointName)
		}
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	// A resumed run keeps the failures recorded before the checkpoint.
	errWriter, err := storage.NewJSONLWriter(cfg.Errors, cfg.CheckpointEnabled)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	state := ledger.NewState(ledger.StateConfig{
		ProgramID:     programID,
		TreeProgramID: treeProgramID,
		AutoProof:     cfg.AutoProof,
	}, logger.Named("ledger"))

	runner := ledger.NewRunner(ledger.RunConfig{
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, state, sinks, errWriter, checkpoint, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Bool("auto_proof", cfg.AutoProof),
		zap.Stringer("program_id", programID),
		zap.Stringer("tree_program_id", treeProgramID),
	)

	summary, err := runner.Run(ctx, inputFile)
	if err != nil {
		return err
	}

	logger.Info("replay complete",
		zap.Int("total", summary.Total),
		zap.Int("rebuilt", summary.Rebuilt),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("batches", summary.Batches),
		zap.Uint64("last_seq", summary.LastSeq),
	)
	return nil
}
