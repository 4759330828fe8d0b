package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrMissingAttr       = errors.New("missing required attribute")
	ErrConflictingEntity = errors.New("conflicting duplicate entity")
	ErrChargeContract    = errors.New("charge join violates resolution contract")
	ErrBadTable          = errors.New("invalid occupation table")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNoMatch           = errors.New("no duration phrase matched")
)
