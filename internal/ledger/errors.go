package ledger

import "clad/internal/errkind"

var (
	ErrPoolNotFound       = errkind.New(errkind.Validation, "globalpool not found")
	ErrProofRequired      = errkind.New(errkind.Validation, "root and proof are required when auto-proof is off")
	ErrDuplicateSeq       = errkind.New(errkind.Validation, "duplicate record seq")
	ErrUnknownInstruction = errkind.New(errkind.Validation, "unknown instruction type")
)
