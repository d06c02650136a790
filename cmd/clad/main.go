package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clad/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "clad",
		Short:        "Globalpool and parallel tree replay tools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay instruction records into account snapshots",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input instruction records JSONL")
	replayCmd.Flags().String("out", "./data/snapshots.jsonl", "output account snapshots JSONL")
	replayCmd.Flags().String("mutations", "./data/mutations.jsonl", "output leaf mutations JSONL (empty disables)")
	replayCmd.Flags().String("errors", "./data/apply_errors.jsonl", "apply errors JSONL")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional sink and checkpoint)")
	replayCmd.Flags().Int("batch-size", 500, "records per batch")
	replayCmd.Flags().String("checkpoint", "./data/replay_checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().String("checkpoint-name", "replay", "checkpoint row name when pg-dsn is set")
	replayCmd.Flags().String("program-id", "", "globalpool program id")
	replayCmd.Flags().String("tree-program-id", config.DefaultTreeProgramID, "parallel tree program id")
	replayCmd.Flags().Bool("auto-proof", true, "fill missing roots and proofs from the local tree")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for sink writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Fetch and decode an account over RPC",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("rpc", "", "Solana RPC URL")
	inspectCmd.Flags().String("address", "", "account address")
	inspectCmd.Flags().String("kind", config.KindGlobalpool, "account kind (globalpool, tree-config)")
	inspectCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	inspectCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
