package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"clad/internal/errkind"
	"clad/internal/model"
)

// ReadRecords parses JSONL instruction records and orders them by seq.
// Lines that do not parse, and records repeating an earlier seq, come back
// as apply errors instead.
func ReadRecords(r io.Reader) ([]model.InstructionRecord, []model.ApplyError, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []model.InstructionRecord
	var failures []model.ApplyError
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var record model.InstructionRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			failures = append(failures, model.ApplyError{
				Kind:  errkind.Validation.Error(),
				Error: fmt.Sprintf("line %d: %v", line, err),
			})
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan input: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	out := make([]model.InstructionRecord, 0, len(records))
	for _, record := range records {
		if len(out) > 0 && record.Seq == out[len(out)-1].Seq {
			failures = append(failures, ApplyErrorFrom(record, fmt.Errorf("%w: %d", ErrDuplicateSeq, record.Seq)))
			continue
		}
		out = append(out, record)
	}
	return out, failures, nil
}

// ApplyErrorFrom describes why record failed.
func ApplyErrorFrom(record model.InstructionRecord, err error) model.ApplyError {
	kind := ""
	if k := errkind.Of(err); k != nil {
		kind = k.Error()
	}
	return model.ApplyError{
		Seq:         record.Seq,
		Slot:        record.Slot,
		Signature:   record.Signature,
		Instruction: record.Name,
		Kind:        kind,
		Retryable:   errkind.Retryable(err),
		Error:       err.Error(),
	}
}
