package safemath

import (
	"math"
	"testing"
)

func TestAddOverflow(t *testing.T) {
	sum, err := Add(10, 32)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if sum != 42 {
		t.Fatalf("expected 42, got %d", sum)
	}

	if _, err := Add(math.MaxUint64, 1); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := Add(math.MaxUint64, 0); err != nil {
		t.Fatalf("max plus zero should not overflow: %v", err)
	}
}

func TestSubUnderflow(t *testing.T) {
	diff, err := Sub(42, 10)
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if diff != 32 {
		t.Fatalf("expected 32, got %d", diff)
	}

	if _, err := Sub(10, 11); err != ErrUnderflow {
		t.Fatalf("expected underflow, got %v", err)
	}
	if diff, err := Sub(10, 10); err != nil || diff != 0 {
		t.Fatalf("equal operands should yield zero, got %d %v", diff, err)
	}
}

func TestMulShortCircuitsOnZero(t *testing.T) {
	// Zero times anything is zero, even "anything" that would otherwise
	// participate in an overflowing product.
	product, err := Mul(0, math.MaxUint64)
	if err != nil {
		t.Fatalf("zero multiplicand must not fail: %v", err)
	}
	if product != 0 {
		t.Fatalf("expected 0, got %d", product)
	}
}

func TestMulOverflow(t *testing.T) {
	product, err := Mul(1<<32, 1<<31)
	if err != nil {
		t.Fatalf("mul failed: %v", err)
	}
	if product != 1<<63 {
		t.Fatalf("expected 1<<63, got %d", product)
	}

	if _, err := Mul(1<<32, 1<<32); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := Mul(math.MaxUint64, 2); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestDivFloorsAndGuardsZero(t *testing.T) {
	quotient, err := Div(100, 3)
	if err != nil {
		t.Fatalf("div failed: %v", err)
	}
	if quotient != 33 {
		t.Fatalf("expected floor 33, got %d", quotient)
	}

	if _, err := Div(1, 0); err != ErrDivisionByZero {
		t.Fatalf("expected division by zero, got %v", err)
	}
}
