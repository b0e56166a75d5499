package safemath

import (
	"errors"

	"github.com/holiman/uint256"
)

// Package safemath is the single arithmetic boundary for balances,
// allowances and supply. Raw +,-,*,/ on amounts is a boundary violation
// everywhere else in the repo.

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// Add returns a+b or ErrOverflow when the sum does not fit uint64.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow when b > a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns a*b or ErrOverflow when the product does not fit uint64.
// A zero multiplicand short-circuits before the wide product.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 {
		return 0, nil
	}
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}

// Div returns the floor of a/b or ErrDivisionByZero when b == 0.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}
