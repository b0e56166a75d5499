package errors

import "errors"

var (
	ErrInvalidAccount = errors.New("invalid account")
	ErrAccessDenied   = errors.New("access denied")
	ErrOutOfRange     = errors.New("grant value out of range")
	ErrNotMatured     = errors.New("box has not matured")
	ErrNothingToClaim = errors.New("box holds no value")
	ErrBoxNotFound    = errors.New("vesting box not found")
	ErrGrantNotFound  = errors.New("grant record not found")
)
