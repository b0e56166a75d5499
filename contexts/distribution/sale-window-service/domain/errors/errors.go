package errors

import "errors"

var (
	ErrInvalidAccount       = errors.New("invalid account")
	ErrAccessDenied         = errors.New("access denied")
	ErrNotWhitelisted       = errors.New("buyer is not whitelisted")
	ErrOutOfRange           = errors.New("payment value out of transaction range")
	ErrCapExceeded          = errors.New("token amount exceeds remaining cap")
	ErrZeroRate             = errors.New("rate source returned zero")
	ErrPaymentForwardFailed = errors.New("payment forward failed")
	ErrSaleNotFound         = errors.New("sale record not found")
)
