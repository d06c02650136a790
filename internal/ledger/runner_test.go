package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"clad/internal/errkind"
	"clad/internal/instruction"
	"clad/internal/model"
)

func testTime() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

type memoryStorage struct {
	snapshots [][]model.AccountSnapshot
	mutations []model.LeafMutationRecord
	failures  int
}

func (m *memoryStorage) PutSnapshots(_ context.Context, snapshots []model.AccountSnapshot) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("sink unavailable")
	}
	m.snapshots = append(m.snapshots, snapshots)
	return nil
}

func (m *memoryStorage) PutMutations(_ context.Context, mutations []model.LeafMutationRecord) error {
	m.mutations = append(m.mutations, mutations...)
	return nil
}

type memoryErrors struct {
	values []model.ApplyError
}

func (m *memoryErrors) Write(value interface{}) error {
	m.values = append(m.values, value.(model.ApplyError))
	return nil
}

func line(t *testing.T, seq uint64, name string, accounts map[string]string, args string) string {
	t.Helper()
	record := model.InstructionRecord{
		Seq:       seq,
		Slot:      seq * 10,
		Signature: "sig",
		Name:      name,
		Accounts:  accounts,
		Timestamp: 1700000000,
	}
	if args != "" {
		record.Args = json.RawMessage(args)
	}
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(raw)
}

func replayInput(t *testing.T) []string {
	t.Helper()
	pool := poolAddress(t).String()
	tree := testKey(30).String()
	creator := testKey(31).String()
	message := `{"compressed_nft":"` + testKey(50).String() + `","realm":"` + testKey(51).String() +
		`","governing_token_owner":"` + testKey(52).String() + `","proposal":"` + testKey(53).String() +
		`","vote_weight":5}`

	// Out of seq order on purpose.
	return []string{
		line(t, 2, instruction.NameUpdateLiquidity, map[string]string{"globalpool": pool}, `{"liquidity":"1000"}`),
		line(t, 1, instruction.NameInitializeGlobalpool, map[string]string{
			"fee_authority": testKey(9).String(),
			"token_mint_a":  testKey(1).String(),
			"token_vault_a": testKey(3).String(),
			"token_mint_b":  testKey(2).String(),
			"token_vault_b": testKey(4).String(),
		}, `{"tick_spacing":64,"sqrt_price":"18446744073709551616","fee_rate":3000,"protocol_fee_rate":300}`),
		line(t, 3, "close_position", map[string]string{}, ""),
		line(t, 4, instruction.NameUpdateAfterSwap, map[string]string{"globalpool": pool},
			`{"liquidity_available":"1000","tick_index":0,"sqrt_price":"1","fee_growth_global":"0","protocol_fee":0,"is_token_fee_in_a":true}`),
		"{not json",
		line(t, 5, instruction.NameCreateParallelTree, map[string]string{"tree": tree, "tree_creator": creator},
			`{"max_depth":3,"canopy_depth":0}`),
		line(t, 6, instruction.NameMintGovernanceMetadata, map[string]string{
			"tree":       tree,
			"leaf_owner": testKey(32).String(),
			"signer":     creator,
		}, `{"nonce":0,"index":0,"message":`+message+`}`),
	}
}

func newTestRunner(state *State, sink *memoryStorage, errs *memoryErrors, cp CheckpointStore) *Runner {
	r := NewRunner(RunConfig{BatchSize: 2, MaxRetries: 2, RetryBackoff: time.Millisecond}, state, sink, errs, cp, nil)
	r.now = testTime
	return r
}

func TestRunnerReplay(t *testing.T) {
	sink := &memoryStorage{failures: 1}
	errs := &memoryErrors{}
	cp := NewStateCheckpoint(&memoryStateStore{values: map[string]uint64{}}, "replay")
	runner := newTestRunner(newTestState(true), sink, errs, cp)

	summary, err := runner.Run(context.Background(), strings.NewReader(strings.Join(replayInput(t), "\n")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Total != 7 || summary.Applied != 4 || summary.Skipped != 1 || summary.Failed != 2 || summary.Batches != 3 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if summary.LastSeq != 6 {
		t.Fatalf("last seq mismatch: %d", summary.LastSeq)
	}

	if len(sink.snapshots) != 3 {
		t.Fatalf("expected one flush per batch, got %d", len(sink.snapshots))
	}
	if len(sink.snapshots[0]) != 1 || sink.snapshots[0][0].Globalpool.LiquidityAvailable != "1000" || sink.snapshots[0][0].Seq != 2 {
		t.Fatalf("first batch snapshot mismatch: %+v", sink.snapshots[0])
	}
	if len(sink.snapshots[1]) != 0 {
		t.Fatalf("failed swap should not produce a snapshot: %+v", sink.snapshots[1])
	}
	if len(sink.snapshots[2]) != 1 || sink.snapshots[2][0].Kind != model.KindTree {
		t.Fatalf("third batch snapshot mismatch: %+v", sink.snapshots[2])
	}
	if len(sink.mutations) != 1 || sink.mutations[0].Seq != 6 {
		t.Fatalf("mutations mismatch: %+v", sink.mutations)
	}

	if len(errs.values) != 2 {
		t.Fatalf("expected 2 apply errors, got %+v", errs.values)
	}
	var swapErr model.ApplyError
	for _, e := range errs.values {
		if e.Seq == 4 {
			swapErr = e
		}
	}
	if swapErr.Instruction != instruction.NameUpdateAfterSwap || swapErr.Kind != errkind.Validation.Error() || swapErr.Retryable {
		t.Fatalf("swap error mismatch: %+v", swapErr)
	}

	last, ok, err := cp.Load(context.Background())
	if err != nil || !ok || last != 6 {
		t.Fatalf("checkpoint mismatch: %d %v %v", last, ok, err)
	}
}

func TestRunnerResumeRebuildsState(t *testing.T) {
	cp := NewStateCheckpoint(&memoryStateStore{values: map[string]uint64{}}, "replay")
	input := replayInput(t)

	first := newTestRunner(newTestState(true), &memoryStorage{}, &memoryErrors{}, cp)
	if _, err := first.Run(context.Background(), strings.NewReader(strings.Join(input, "\n"))); err != nil {
		t.Fatalf("first run: %v", err)
	}

	input = append(input, line(t, 7, instruction.NameUpdateLiquidity,
		map[string]string{"globalpool": poolAddress(t).String()}, `{"liquidity":"2000"}`))
	sink := &memoryStorage{}
	state := newTestState(true)
	second := newTestRunner(state, sink, &memoryErrors{}, cp)
	summary, err := second.Run(context.Background(), strings.NewReader(strings.Join(input, "\n")))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Rebuilt != 6 || summary.Applied != 1 || summary.LastSeq != 7 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if len(sink.snapshots) != 1 || len(sink.snapshots[0]) != 1 {
		t.Fatalf("expected only the new pool snapshot, got %+v", sink.snapshots)
	}
	snap := sink.snapshots[0][0]
	if snap.Seq != 7 || snap.Globalpool.LiquidityAvailable != "2000" || snap.Globalpool.FeeRate != 3000 {
		t.Fatalf("resumed snapshot mismatch: %+v", snap.Globalpool)
	}
	if len(sink.mutations) != 0 {
		t.Fatalf("rebuilt mutations must not be rewritten")
	}
	if _, err := state.Trees().Root(testKey(30)); err != nil {
		t.Fatalf("tree should be rebuilt: %v", err)
	}
}

func TestRunnerNothingToApply(t *testing.T) {
	runner := newTestRunner(newTestState(true), &memoryStorage{}, nil, nil)
	summary, err := runner.Run(context.Background(), strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Total != 0 || summary.Batches != 0 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
}

func TestRunnerRejectsZeroBatch(t *testing.T) {
	runner := NewRunner(RunConfig{}, newTestState(true), &memoryStorage{}, nil, nil, nil)
	if _, err := runner.Run(context.Background(), strings.NewReader("")); err == nil {
		t.Fatalf("expected batch size error")
	}
}

func TestReadRecordsOrdersAndDeduplicates(t *testing.T) {
	input := strings.Join([]string{
		`{"seq":3,"name":"a"}`,
		`{"seq":1,"name":"b"}`,
		`{"seq":3,"name":"c"}`,
	}, "\n")
	records, failures, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 || records[0].Seq != 1 || records[1].Name != "a" {
		t.Fatalf("records mismatch: %+v", records)
	}
	if len(failures) != 1 || failures[0].Instruction != "c" || !strings.Contains(failures[0].Error, "duplicate") {
		t.Fatalf("failures mismatch: %+v", failures)
	}
}
