package model

import (
	"encoding/json"
)

// InstructionRecord is one program instruction as captured off-chain.
// Seq orders records globally; the ledger applies them in Seq order.
type InstructionRecord struct {
	Seq       uint64            `json:"seq"`
	Slot      uint64            `json:"slot"`
	Signature string            `json:"signature"`
	Name      string            `json:"name"`
	Accounts  map[string]string `json:"accounts"`
	Args      json.RawMessage   `json:"args,omitempty"`
	Timestamp uint64            `json:"timestamp"`
}
