package paralleltree

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestTreeConfigLayout(t *testing.T) {
	cfg := TreeConfig{TreeCreator: solana.PublicKey{1}, TreeDelegate: solana.PublicKey{2}, IsPublic: true}
	data, err := cfg.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 8+32+32+1 {
		t.Fatalf("size mismatch: %d", len(data))
	}
	var decoded TreeConfig
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != cfg {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	data[0] ^= 1
	if err := decoded.UnmarshalBinary(data); !errors.Is(err, ErrInvalidTreeConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestGovernanceMetadataDataHash(t *testing.T) {
	a, err := testMessage(1).DataHash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, _ := testMessage(1).DataHash()
	c, _ := testMessage(2).DataHash()
	if a != b {
		t.Fatalf("data hash not deterministic")
	}
	if a == c {
		t.Fatalf("data hash should depend on vote weight")
	}
}
