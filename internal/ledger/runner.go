package ledger

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"clad/internal/instruction"
	"clad/internal/model"
	"clad/internal/retry"
	"clad/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// ErrorSink receives apply errors, one value per failed record.
type ErrorSink interface {
	Write(value interface{}) error
}

// Summary counts what a replay did.
type Summary struct {
	Total   int
	Rebuilt int
	Applied int
	Skipped int
	Failed  int
	Batches int
	LastSeq uint64
	HasSeq  bool
}

// Runner applies instruction records to State in seq order, flushing
// snapshots and the checkpoint after every batch.
type Runner struct {
	cfg        RunConfig
	state      *State
	decoder    *instruction.Decoder
	storage    storage.Storage
	errors     ErrorSink
	checkpoint CheckpointStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner builds a Runner with its dependencies. checkpoint and errSink
// may be nil.
func NewRunner(cfg RunConfig, state *State, storageSink storage.Storage, errSink ErrorSink, checkpoint CheckpointStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		state:      state,
		decoder:    instruction.NewDecoder(),
		storage:    storageSink,
		errors:     errSink,
		checkpoint: checkpoint,
		logger:     logger,
		now:        time.Now,
	}
}

// Run replays every record read from in. Records at or below the checkpoint
// are applied to rebuild state but produce no output.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	var summary Summary
	if r.state == nil {
		return summary, fmt.Errorf("state is nil")
	}
	if r.storage == nil {
		return summary, fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return summary, fmt.Errorf("batch size must be greater than zero")
	}

	records, failures, err := ReadRecords(in)
	if err != nil {
		return summary, err
	}
	summary.Total = len(records) + len(failures)

	var last uint64
	var resumed bool
	if r.checkpoint != nil {
		last, resumed, err = r.checkpoint.Load(ctx)
		if err != nil {
			return summary, fmt.Errorf("load checkpoint: %w", err)
		}
	}

	start := 0
	if resumed {
		for start < len(records) && records[start].Seq <= last {
			r.applyRecord(ctx, records[start])
			start++
		}
		summary.Rebuilt = start
		summary.LastSeq, summary.HasSeq = last, true
		// Output from the rebuilt span was written by the earlier run.
		if _, _, err := r.state.Drain(last, 0, r.now()); err != nil {
			return summary, err
		}
		r.logger.Info("resume from checkpoint", zap.Uint64("last_applied", last), zap.Int("rebuilt", start))
	}

	for _, failure := range failures {
		summary.Failed++
		r.writeError(failure)
	}

	if start >= len(records) {
		r.logger.Info("nothing to apply", zap.Int("records", len(records)))
		return summary, nil
	}

	ranges, err := SplitRange(start, len(records)-1, r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	for _, batch := range ranges {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var applied, skipped, failed int
		for _, record := range records[batch.From : batch.To+1] {
			result := r.applyRecord(ctx, record)
			switch {
			case result.err != nil:
				failed++
				r.writeError(ApplyErrorFrom(record, result.err))
			case result.skipped:
				skipped++
			default:
				applied++
			}
		}

		tail := records[batch.To]
		if err := r.flush(ctx, tail); err != nil {
			return summary, err
		}

		summary.Applied += applied
		summary.Skipped += skipped
		summary.Failed += failed
		summary.Batches++
		summary.LastSeq, summary.HasSeq = tail.Seq, true

		r.logger.Info("batch complete",
			zap.Uint64("from_seq", records[batch.From].Seq),
			zap.Uint64("to_seq", tail.Seq),
			zap.Int("applied", applied),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed),
		)
	}

	return summary, nil
}

type outcome struct {
	skipped bool
	err     error
}

func (r *Runner) applyRecord(ctx context.Context, record model.InstructionRecord) outcome {
	if !r.decoder.CanDecode(record.Name) {
		r.logger.Debug("skip record", zap.Uint64("seq", record.Seq), zap.String("name", record.Name))
		return outcome{skipped: true}
	}
	ins, err := r.decoder.Decode(record)
	if err != nil {
		return outcome{err: fmt.Errorf("decode: %w", err)}
	}
	if err := r.state.Apply(ctx, record, ins); err != nil {
		return outcome{err: err}
	}
	return outcome{}
}

func (r *Runner) flush(ctx context.Context, tail model.InstructionRecord) error {
	snapshots, mutations, err := r.state.Drain(tail.Seq, tail.Slot, r.now())
	if err != nil {
		return err
	}

	err = retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.storage.PutSnapshots(ctx, snapshots)
		if err != nil {
			r.logger.Warn("store snapshots failed", zap.Error(err), zap.Uint64("seq", tail.Seq))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}

	err = retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.storage.PutMutations(ctx, mutations)
		if err != nil {
			r.logger.Warn("store mutations failed", zap.Error(err), zap.Uint64("seq", tail.Seq))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("store mutations: %w", err)
	}

	if r.checkpoint == nil {
		return nil
	}
	err = retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.checkpoint.Save(ctx, tail.Seq)
	})
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (r *Runner) writeError(failure model.ApplyError) {
	if r.errors == nil {
		return
	}
	if err := r.errors.Write(failure); err != nil {
		r.logger.Warn("write apply error failed", zap.Error(err), zap.Uint64("seq", failure.Seq))
	}
}
