// Package errkind classifies engine failures into the categories callers
// act on. Domain sentinels wrap exactly one kind, so errors.Is works against
// both the concrete sentinel and its kind.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// Validation covers malformed parameters rejected before any mutation.
	Validation = errors.New("validation error")
	// Authorization covers a signer that may not mutate the target.
	Authorization = errors.New("authorization error")
	// ProofMismatch covers a root or proof that did not verify.
	ProofMismatch = errors.New("proof mismatch")
	// Arithmetic covers overflow or underflow in accounting math.
	Arithmetic = errors.New("arithmetic error")
	// AlreadyInitialized guards create-once operations.
	AlreadyInitialized = errors.New("already initialized")
)

// New builds a domain sentinel of the given kind.
func New(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Retryable reports whether resubmitting with fresh inputs can succeed
// without operator action. Only stale proofs qualify.
func Retryable(err error) bool {
	return errors.Is(err, ProofMismatch)
}

// Of returns the kind wrapped by err, or nil when err is unclassified.
func Of(err error) error {
	for _, kind := range []error{Validation, Authorization, ProofMismatch, Arithmetic, AlreadyInitialized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
