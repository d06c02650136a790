package compression

import "clad/internal/errkind"

var (
	ErrLeafMismatch         = errkind.New(errkind.ProofMismatch, "root or proof does not verify leaf")
	ErrInvalidProofLength   = errkind.New(errkind.Validation, "invalid proof length")
	ErrLeafIndexOutOfBounds = errkind.New(errkind.Validation, "leaf index out of bounds")
	ErrTreeExists           = errkind.New(errkind.Validation, "tree already exists")
	ErrTreeNotFound         = errkind.New(errkind.Validation, "tree not found")
	ErrInvalidTreeDepth     = errkind.New(errkind.Validation, "invalid tree depth")
	ErrAuthorityMismatch    = errkind.New(errkind.Authorization, "signer is not the tree authority")
)
