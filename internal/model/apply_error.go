package model

// ApplyError records an instruction the ledger could not apply.
type ApplyError struct {
	Seq         uint64 `json:"seq"`
	Slot        uint64 `json:"slot"`
	Signature   string `json:"signature"`
	Instruction string `json:"instruction"`
	Kind        string `json:"kind,omitempty"`
	Retryable   bool   `json:"retryable"`
	Error       string `json:"error"`
}
