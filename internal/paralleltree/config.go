package paralleltree

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// TreeConfigDiscriminator is the Anchor discriminator of a TreeConfig account.
var TreeConfigDiscriminator = bin.SighashTypeID(bin.SIGHASH_ACCOUNT_NAMESPACE, "TreeConfig")

// TreeConfig gates who may mutate the leaves of one tree.
type TreeConfig struct {
	TreeCreator  solana.PublicKey `json:"tree_creator"`
	TreeDelegate solana.PublicKey `json:"tree_delegate"`
	IsPublic     bool             `json:"is_public"`
}

// Authorize accepts any signer on a public tree and only the creator or
// delegate on a private one.
func (c TreeConfig) Authorize(signer solana.PublicKey) error {
	if c.IsPublic || signer.Equals(c.TreeCreator) || signer.Equals(c.TreeDelegate) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTreeAuthorityIncorrect, signer)
}

func (c TreeConfig) MarshalBinary() ([]byte, error) {
	body, err := bin.MarshalBorsh(c)
	if err != nil {
		return nil, fmt.Errorf("encode tree config: %w", err)
	}
	out := make([]byte, 0, len(TreeConfigDiscriminator)+len(body))
	out = append(out, TreeConfigDiscriminator[:]...)
	return append(out, body...), nil
}

func (c *TreeConfig) UnmarshalBinary(data []byte) error {
	if len(data) < len(TreeConfigDiscriminator) || !bytes.Equal(data[:len(TreeConfigDiscriminator)], TreeConfigDiscriminator[:]) {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidTreeConfig)
	}
	var out TreeConfig
	if err := bin.NewBorshDecoder(data[len(TreeConfigDiscriminator):]).Decode(&out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTreeConfig, err)
	}
	*c = out
	return nil
}
