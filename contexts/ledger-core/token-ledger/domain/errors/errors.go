package errors

import "errors"

var (
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInvalidLedgerInput    = errors.New("invalid ledger input")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrAccessDenied          = errors.New("access denied")
	ErrSupplyAlreadySeeded   = errors.New("supply already seeded")
	ErrRecordNotFound        = errors.New("record not found")
)
