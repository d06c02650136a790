package globalpool

import "lukechampine.com/uint128"

// globalpoolBuilder assembles active pools for tests without going through
// Initialize.
type globalpoolBuilder struct {
	pool Globalpool
}

func newGlobalpoolBuilder() *globalpoolBuilder {
	return &globalpoolBuilder{pool: Globalpool{Lifecycle: Active}}
}

func (b *globalpoolBuilder) liquidity(v uint64) *globalpoolBuilder {
	b.pool.LiquidityAvailable = uint128.From64(v)
	return b
}

func (b *globalpoolBuilder) borrowed(v uint64) *globalpoolBuilder {
	b.pool.LiquidityBorrowed = uint128.From64(v)
	return b
}

func (b *globalpoolBuilder) tickCurrentIndex(v int32) *globalpoolBuilder {
	b.pool.TickCurrentIndex = v
	return b
}

func (b *globalpoolBuilder) sqrtPrice(v uint128.Uint128) *globalpoolBuilder {
	b.pool.SqrtPrice = v
	return b
}

func (b *globalpoolBuilder) feeGrowthGlobalA(v uint128.Uint128) *globalpoolBuilder {
	b.pool.FeeGrowthGlobalA = v
	return b
}

func (b *globalpoolBuilder) feeGrowthGlobalB(v uint128.Uint128) *globalpoolBuilder {
	b.pool.FeeGrowthGlobalB = v
	return b
}

func (b *globalpoolBuilder) feeRate(v uint16) *globalpoolBuilder {
	b.pool.FeeRate = v
	return b
}

func (b *globalpoolBuilder) protocolFeeRate(v uint16) *globalpoolBuilder {
	b.pool.ProtocolFeeRate = v
	return b
}

func (b *globalpoolBuilder) build() *Globalpool {
	pool := b.pool
	return &pool
}
