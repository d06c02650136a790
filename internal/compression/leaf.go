package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// LeafVersion tags the leaf schema layout.
type LeafVersion uint8

const LeafV0 LeafVersion = 0

const assetSeed = "asset"

// LeafSchema is the record whose node is stored in a tree. Only the node is
// retained, so a leaf must be rebuilt byte-for-byte to prove it.
type LeafSchema struct {
	Version  LeafVersion
	ID       solana.PublicKey
	Owner    solana.PublicKey
	Delegate solana.PublicKey
	Nonce    uint64
	DataHash Hash
}

func NewLeafSchemaV0(id, owner, delegate solana.PublicKey, nonce uint64, dataHash Hash) LeafSchema {
	return LeafSchema{
		Version:  LeafV0,
		ID:       id,
		Owner:    owner,
		Delegate: delegate,
		Nonce:    nonce,
		DataHash: dataHash,
	}
}

// Node is keccak256(id || owner || delegate || nonce_le || data_hash).
func (l LeafSchema) Node() Hash {
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], l.Nonce)
	return HashData(l.ID[:], l.Owner[:], l.Delegate[:], nonce[:], l.DataHash[:])
}

// AssetID derives the id of the asset that payload maps to inside tree. The
// id depends only on the tree and payload, never on the leaf position.
func AssetID(programID, tree, payload solana.PublicKey) (solana.PublicKey, error) {
	id, _, err := solana.FindProgramAddress([][]byte{
		[]byte(assetSeed),
		tree[:],
		payload[:],
	}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive asset id: %w", err)
	}
	return id, nil
}
