package paralleltree

import "clad/internal/errkind"

var (
	ErrTreeAuthorityIncorrect = errkind.New(errkind.Authorization, "signer is not tree creator or delegate")
	ErrInvalidTreeConfig      = errkind.New(errkind.Validation, "invalid tree config account data")
)
