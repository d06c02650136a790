package globalpool

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

const (
	discriminatorSize = 8
	// FieldsSize is the packed size of the declared fields.
	FieldsSize = 279
	// ReservedSize is the zero region after the fields kept for
	// forward-compatible additions. Its first byte holds the lifecycle tag.
	ReservedSize = 384
	// AccountSize is the full on-chain account length.
	AccountSize = discriminatorSize + FieldsSize + ReservedSize
)

// Discriminator is the Anchor account discriminator of a Globalpool.
var Discriminator = bin.SighashTypeID(bin.SIGHASH_ACCOUNT_NAMESPACE, "Globalpool")

// MarshalBinary encodes the pool in its fixed account layout.
func (g *Globalpool) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(AccountSize)
	enc := bin.NewBorshEncoder(buf)

	steps := []func() error{
		func() error { return enc.WriteBytes(Discriminator[:], false) },
		func() error { return enc.WriteBytes(g.Bump[:], false) },
		func() error { return enc.WriteUint16(g.TickSpacing, binary.LittleEndian) },
		func() error { return enc.WriteBytes(g.TickSpacingSeed[:], false) },
		func() error { return enc.WriteUint16(g.FeeRate, binary.LittleEndian) },
		func() error { return enc.WriteBytes(g.FeeRateSeed[:], false) },
		func() error { return enc.WriteUint16(g.ProtocolFeeRate, binary.LittleEndian) },
		func() error { return writeUint128(enc, g.LiquidityAvailable) },
		func() error { return writeUint128(enc, g.LiquidityBorrowed) },
		func() error { return writeUint128(enc, g.SqrtPrice) },
		func() error { return enc.WriteInt32(g.TickCurrentIndex, binary.LittleEndian) },
		func() error { return enc.WriteUint64(g.ProtocolFeeOwedA, binary.LittleEndian) },
		func() error { return enc.WriteUint64(g.ProtocolFeeOwedB, binary.LittleEndian) },
		func() error { return enc.WriteBytes(g.TokenMintA[:], false) },
		func() error { return enc.WriteBytes(g.TokenVaultA[:], false) },
		func() error { return writeUint128(enc, g.FeeGrowthGlobalA) },
		func() error { return enc.WriteBytes(g.TokenMintB[:], false) },
		func() error { return enc.WriteBytes(g.TokenVaultB[:], false) },
		func() error { return writeUint128(enc, g.FeeGrowthGlobalB) },
		func() error { return enc.WriteUint64(g.InceptionTime, binary.LittleEndian) },
		func() error { return enc.WriteBytes(g.FeeAuthority[:], false) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("encode globalpool: %w", err)
		}
	}

	reserved := make([]byte, ReservedSize)
	reserved[0] = byte(g.Lifecycle)
	if err := enc.WriteBytes(reserved, false); err != nil {
		return nil, fmt.Errorf("encode globalpool reserved: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an account produced by MarshalBinary. Accounts
// written before the lifecycle tag existed carry a zero tag; they decode as
// Active when their sqrt price or inception time is set.
func (g *Globalpool) UnmarshalBinary(data []byte) error {
	if len(data) < discriminatorSize+FieldsSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:discriminatorSize], Discriminator[:]) {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}

	d := &layoutDecoder{dec: bin.NewBorshDecoder(data[discriminatorSize:])}
	var out Globalpool
	d.read(out.Bump[:])
	out.TickSpacing = d.u16()
	d.read(out.TickSpacingSeed[:])
	out.FeeRate = d.u16()
	d.read(out.FeeRateSeed[:])
	out.ProtocolFeeRate = d.u16()
	out.LiquidityAvailable = d.u128()
	out.LiquidityBorrowed = d.u128()
	out.SqrtPrice = d.u128()
	out.TickCurrentIndex = d.i32()
	out.ProtocolFeeOwedA = d.u64()
	out.ProtocolFeeOwedB = d.u64()
	out.TokenMintA = d.pubkey()
	out.TokenVaultA = d.pubkey()
	out.FeeGrowthGlobalA = d.u128()
	out.TokenMintB = d.pubkey()
	out.TokenVaultB = d.pubkey()
	out.FeeGrowthGlobalB = d.u128()
	out.InceptionTime = d.u64()
	out.FeeAuthority = d.pubkey()
	if d.err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccountData, d.err)
	}

	rest := data[discriminatorSize+FieldsSize:]
	if len(rest) > 0 {
		out.Lifecycle = Lifecycle(rest[0])
	}
	if out.Lifecycle > Active {
		return fmt.Errorf("%w: lifecycle tag %d", ErrInvalidAccountData, out.Lifecycle)
	}
	if out.Lifecycle == Uninitialized && (!out.SqrtPrice.IsZero() || out.InceptionTime != 0) {
		out.Lifecycle = Active
	}
	*g = out
	return nil
}

func writeUint128(enc *bin.Encoder, v uint128.Uint128) error {
	var b [16]byte
	v.PutBytes(b[:])
	return enc.WriteBytes(b[:], false)
}

// layoutDecoder keeps the first read error so field decoding reads flat.
type layoutDecoder struct {
	dec *bin.Decoder
	err error
}

func (d *layoutDecoder) read(dst []byte) {
	if d.err != nil {
		return
	}
	var b []byte
	b, d.err = d.dec.ReadNBytes(len(dst))
	copy(dst, b)
}

func (d *layoutDecoder) u16() uint16 {
	if d.err != nil {
		return 0
	}
	var v uint16
	v, d.err = d.dec.ReadUint16(binary.LittleEndian)
	return v
}

func (d *layoutDecoder) i32() int32 {
	if d.err != nil {
		return 0
	}
	var v int32
	v, d.err = d.dec.ReadInt32(binary.LittleEndian)
	return v
}

func (d *layoutDecoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	var v uint64
	v, d.err = d.dec.ReadUint64(binary.LittleEndian)
	return v
}

func (d *layoutDecoder) u128() uint128.Uint128 {
	var b [16]byte
	d.read(b[:])
	return uint128.FromBytes(b[:])
}

func (d *layoutDecoder) pubkey() solana.PublicKey {
	var pk solana.PublicKey
	d.read(pk[:])
	return pk
}
