package errors

import "errors"

var (
	ErrInvalidAccount = errors.New("invalid account")
	ErrAccessDenied   = errors.New("access denied")
)
