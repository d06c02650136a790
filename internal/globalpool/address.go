package globalpool

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const seedPrefix = "globalpool"

// Seeds returns the program-derived-address seeds of the pool, bump last.
func (g *Globalpool) Seeds() [][]byte {
	return [][]byte{
		[]byte(seedPrefix),
		g.TokenMintA[:],
		g.TokenMintB[:],
		g.FeeRateSeed[:],
		g.TickSpacingSeed[:],
		g.Bump[:],
	}
}

// Address recomputes the pool address from its stored seeds.
func (g *Globalpool) Address(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(g.Seeds(), programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("globalpool address: %w", err)
	}
	return addr, nil
}

// DeriveAddress finds the canonical pool address and bump for a market.
func DeriveAddress(programID, mintA, mintB solana.PublicKey, feeRate, tickSpacing uint16) (solana.PublicKey, uint8, error) {
	var feeSeed, spacingSeed [2]byte
	binary.LittleEndian.PutUint16(feeSeed[:], feeRate)
	binary.LittleEndian.PutUint16(spacingSeed[:], tickSpacing)
	addr, bump, err := solana.FindProgramAddress([][]byte{
		[]byte(seedPrefix),
		mintA[:],
		mintB[:],
		feeSeed[:],
		spacingSeed[:],
	}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive globalpool address: %w", err)
	}
	return addr, bump, nil
}
