package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clad/internal/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return lines
}

func TestJsonlStorageAppends(t *testing.T) {
	dir := t.TempDir()
	snapshots := filepath.Join(dir, "out", "snapshots.jsonl")
	mutations := filepath.Join(dir, "out", "mutations.jsonl")
	sink := NewJsonlStorage(snapshots, mutations)
	ctx := context.Background()

	first := []model.AccountSnapshot{{Seq: 1, Kind: model.KindGlobalpool, Address: "a"}}
	second := []model.AccountSnapshot{{Seq: 2, Kind: model.KindTree, Address: "b"}}
	if err := sink.PutSnapshots(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := sink.PutSnapshots(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if err := sink.PutMutations(ctx, []model.LeafMutationRecord{{Seq: 2, Kind: "mint"}}); err != nil {
		t.Fatalf("put mutations: %v", err)
	}

	lines := readLines(t, snapshots)
	if len(lines) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(lines))
	}
	var got model.AccountSnapshot
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Seq != 2 || got.Address != "b" {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
	if lines := readLines(t, mutations); len(lines) != 1 {
		t.Fatalf("expected 1 mutation line, got %d", len(lines))
	}
}

func TestJsonlStorageSkipsMutationsWithoutPath(t *testing.T) {
	sink := NewJsonlStorage(filepath.Join(t.TempDir(), "s.jsonl"), "")
	if err := sink.PutMutations(context.Background(), []model.LeafMutationRecord{{Seq: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONLWriterTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	for i := 0; i < 2; i++ {
		w, err := NewJSONLWriter(path, false)
		if err != nil {
			t.Fatalf("open writer: %v", err)
		}
		if err := w.Write(model.ApplyError{Seq: uint64(i)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("expected truncated file with 1 line, got %d", len(lines))
	}
}

type failingStorage struct{ calls int }

func (f *failingStorage) PutSnapshots(context.Context, []model.AccountSnapshot) error {
	f.calls++
	return errors.New("sink down")
}

func (f *failingStorage) PutMutations(context.Context, []model.LeafMutationRecord) error {
	f.calls++
	return errors.New("sink down")
}

func TestFanoutStopsAtFirstFailure(t *testing.T) {
	bad := &failingStorage{}
	after := &failingStorage{}
	fan := Fanout{bad, after}
	if err := fan.PutSnapshots(context.Background(), []model.AccountSnapshot{{Seq: 1}}); err == nil {
		t.Fatalf("expected error")
	}
	if bad.calls != 1 || after.calls != 0 {
		t.Fatalf("calls mismatch: %d %d", bad.calls, after.calls)
	}
}
