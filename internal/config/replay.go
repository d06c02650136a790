package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// DefaultTreeProgramID is the deployed parallel tree program.
const DefaultTreeProgramID = "pmtcFF8oVLWBK2EKuGSLJtRbePDNNYyvqhEJ6cKBhMH"

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	In                string
	Out               string
	Mutations         string
	Errors            string
	PGDSN             string
	BatchSize         int
	Checkpoint        string
	CheckpointEnabled bool
	CheckpointName    string
	ProgramID         string
	TreeProgramID     string
	AutoProof         bool
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":                "./data/snapshots.jsonl",
		"mutations":          "./data/mutations.jsonl",
		"errors":             "./data/apply_errors.jsonl",
		"batch-size":         500,
		"checkpoint":         "./data/replay_checkpoint.json",
		"checkpoint-enabled": true,
		"checkpoint-name":    "replay",
		"tree-program-id":    DefaultTreeProgramID,
		"auto-proof":         true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"log-level":          "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		In:                v.GetString("in"),
		Out:               v.GetString("out"),
		Mutations:         v.GetString("mutations"),
		Errors:            v.GetString("errors"),
		PGDSN:             v.GetString("pg-dsn"),
		BatchSize:         v.GetInt("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		CheckpointName:    v.GetString("checkpoint-name"),
		ProgramID:         v.GetString("program-id"),
		TreeProgramID:     v.GetString("tree-program-id"),
		AutoProof:         v.GetBool("auto-proof"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the settings a replay cannot run without.
func (c ReplayConfig) Validate() error {
	if c.In == "" {
		return fmt.Errorf("input path is required")
	}
	if c.Out == "" && c.PGDSN == "" {
		return fmt.Errorf("output path or pg dsn is required")
	}
	if c.Errors == "" {
		return fmt.Errorf("errors path is required")
	}
	if c.ProgramID == "" {
		return fmt.Errorf("program id is required")
	}
	if c.TreeProgramID == "" {
		return fmt.Errorf("tree program id is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	return nil
}
