package errkind

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewWrapsKind(t *testing.T) {
	sentinel := New(Validation, "bad input")
	wrapped := fmt.Errorf("initialize: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected sentinel match")
	}
	if !errors.Is(wrapped, Validation) {
		t.Fatalf("expected validation kind")
	}
	if Of(wrapped) != Validation {
		t.Fatalf("kind mismatch: %v", Of(wrapped))
	}
	if wrapped.Error() != "initialize: validation error: bad input" {
		t.Fatalf("message mismatch: %s", wrapped.Error())
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(ProofMismatch, "stale root")) {
		t.Fatalf("proof mismatch should be retryable")
	}
	if Retryable(New(Arithmetic, "overflow")) {
		t.Fatalf("arithmetic should not be retryable")
	}
	if Of(errors.New("plain")) != nil {
		t.Fatalf("plain error should be unclassified")
	}
}
