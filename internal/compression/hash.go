// Package compression implements the leaf schema of compressed governance
// records and a concurrent Merkle tree service that verifies and replaces
// leaves by proof.
package compression

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashLength is the size of every node, root and data hash.
const HashLength = 32

// Hash is a 32-byte keccak-256 commitment: a tree node, a root or the hash
// of a leaf's off-chain payload.
type Hash [HashLength]byte

var (
	// EmptyNode is the value of a leaf slot that was never written.
	EmptyNode Hash
	// EmptyDataHash is the data hash carried by a removed leaf.
	EmptyDataHash Hash
)

// HashData hashes an arbitrary payload.
func HashData(data ...[]byte) Hash {
	return Hash(crypto.Keccak256Hash(data...))
}

// HashParent combines two child nodes.
func HashParent(left, right Hash) Hash {
	return HashData(left[:], right[:])
}

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, fmt.Errorf("hash must be %d bytes, got %d", HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash decodes a 0x-prefixed hex string.
func ParseHash(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return HashFromBytes(b)
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
