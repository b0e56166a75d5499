package errors

import "errors"

var (
	ErrInvalidAccount      = errors.New("invalid account")
	ErrAccessDenied        = errors.New("access denied")
	ErrEmptyPool           = errors.New("no eligible balance to distribute over")
	ErrInsufficientFunding = errors.New("funding account cannot cover share")
	ErrRunNotFound         = errors.New("airdrop run not found")
)
