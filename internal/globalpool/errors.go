package globalpool

import "clad/internal/errkind"

var (
	ErrInvalidTokenMintOrder      = errkind.New(errkind.Validation, "token mint a must sort before token mint b")
	ErrSqrtPriceOutOfBounds       = errkind.New(errkind.Validation, "sqrt price out of bounds")
	ErrFeeRateMaxExceeded         = errkind.New(errkind.Validation, "fee rate exceeds maximum")
	ErrProtocolFeeRateMaxExceeded = errkind.New(errkind.Validation, "protocol fee rate exceeds maximum")
	ErrNotInitialized             = errkind.New(errkind.Validation, "globalpool not initialized")
	ErrFeeGrowthRegression        = errkind.New(errkind.Validation, "fee growth must not decrease")
	ErrAccountAlreadyInitialized  = errkind.New(errkind.AlreadyInitialized, "globalpool already initialized")
	ErrFeeGrowthOverflow          = errkind.New(errkind.Arithmetic, "fee growth overflow")
	ErrProtocolFeeOverflow        = errkind.New(errkind.Arithmetic, "protocol fee owed overflow")

	ErrInvalidAccountData = errkind.New(errkind.Validation, "invalid globalpool account data")
)
