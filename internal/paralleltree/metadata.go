package paralleltree

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"clad/internal/compression"
)

// GovernanceMetadata is the payload committed by a leaf. Only its hash is
// kept in the tree.
type GovernanceMetadata struct {
	CompressedNFT       solana.PublicKey `json:"compressed_nft"`
	Realm               solana.PublicKey `json:"realm"`
	GoverningTokenOwner solana.PublicKey `json:"governing_token_owner"`
	Proposal            solana.PublicKey `json:"proposal"`
	VoteWeight          uint64           `json:"vote_weight"`
}

// DataHash is keccak256 of the borsh encoding.
func (m GovernanceMetadata) DataHash() (compression.Hash, error) {
	encoded, err := bin.MarshalBorsh(m)
	if err != nil {
		return compression.Hash{}, fmt.Errorf("encode governance metadata: %w", err)
	}
	return compression.HashData(encoded), nil
}
