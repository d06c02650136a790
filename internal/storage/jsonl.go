package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clad/internal/model"
)

// JsonlStorage appends snapshots and mutations to JSONL files. An empty
// mutations path drops mutation records.
type JsonlStorage struct {
	snapshotsPath string
	mutationsPath string
	mu            sync.Mutex
}

var _ Storage = (*JsonlStorage)(nil)

func NewJsonlStorage(snapshotsPath, mutationsPath string) *JsonlStorage {
	return &JsonlStorage{snapshotsPath: snapshotsPath, mutationsPath: mutationsPath}
}

// PutSnapshots appends a batch of account snapshots as JSON lines.
func (s *JsonlStorage) PutSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	values := make([]interface{}, len(snapshots))
	for i := range snapshots {
		values[i] = snapshots[i]
	}
	return s.appendLines(ctx, s.snapshotsPath, values)
}

// PutMutations appends a batch of leaf mutations as JSON lines.
func (s *JsonlStorage) PutMutations(ctx context.Context, mutations []model.LeafMutationRecord) error {
	if len(mutations) == 0 || s.mutationsPath == "" {
		return nil
	}
	values := make([]interface{}, len(mutations))
	for i := range mutations {
		values[i] = mutations[i]
	}
	return s.appendLines(ctx, s.mutationsPath, values)
}

func (s *JsonlStorage) appendLines(ctx context.Context, path string, values []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, value := range values {
		line, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
