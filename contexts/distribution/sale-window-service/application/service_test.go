package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"karat/contexts/distribution/sale-window-service/adapters/memory"
	"karat/contexts/distribution/sale-window-service/domain/entities"
	domainerrors "karat/contexts/distribution/sale-window-service/domain/errors"
	"karat/contexts/distribution/sale-window-service/ports"
	ledgermemory "karat/contexts/ledger-core/token-ledger/adapters/memory"
	ledgerapp "karat/contexts/ledger-core/token-ledger/application"
)

const (
	funding     = "treasury"
	spender     = "sale-window"
	beneficiary = "company-wallet"
	buyer       = "alice"
	owner       = "root"
)

type ownerOnly struct{}

func (ownerOnly) IsOwner(_ context.Context, account string) (bool, error) {
	return account == owner, nil
}

type listedSet map[string]bool

func (w listedSet) IsWhitelisted(_ context.Context, account string) (bool, error) {
	return w[account], nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type fixture struct {
	service Service
	ledger  ledgerapp.Service
	store   *memory.Store
	gateway *memory.Gateway
	rates   *memory.RateSource
	clock   *fixedClock
}

func newFixture(t *testing.T, window entities.WindowState, rate uint64, allowance uint64) fixture {
	t.Helper()
	book := ledgermemory.NewStore()
	if err := book.Seed(funding, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	ledger := ledgerapp.Service{Book: book, Clock: book, IDGen: book}
	if err := ledger.Approve(context.Background(), funding, spender, allowance); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	store := memory.NewStore(window)
	gateway := memory.NewGateway()
	rates := memory.NewRateSource(rate)
	clock := &fixedClock{now: window.StartTime.Add(time.Minute)}
	return fixture{
		service: Service{
			Window:         store,
			Sales:          store,
			Ledger:         ledger,
			Buyers:         listedSet{buyer: true},
			Rates:          rates,
			Payments:       gateway,
			Outbox:         store,
			Access:         ownerOnly{},
			Clock:          clock,
			IDGen:          store,
			FundingAccount: funding,
			SpenderAccount: spender,
			Beneficiary:    beneficiary,
			RateUnit:       1,
		},
		ledger:  ledger,
		store:   store,
		gateway: gateway,
		rates:   rates,
		clock:   clock,
	}
}

func openWindow() entities.WindowState {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return entities.WindowState{
		HardCap:   10_000,
		Remaining: 10_000,
		StartTime: start,
		StopTime:  start.Add(24 * time.Hour),
		MinTx:     10,
		MaxTx:     1_000,
	}
}

func (f fixture) balance(t *testing.T, account string) uint64 {
	t.Helper()
	balance, err := f.ledger.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s failed: %v", account, err)
	}
	return balance
}

func (f fixture) remaining(t *testing.T) uint64 {
	t.Helper()
	window, err := f.store.Window(context.Background())
	if err != nil {
		t.Fatalf("window read failed: %v", err)
	}
	return window.Remaining
}

func TestPurchaseConvertsAtCurrentRate(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	sale, err := f.service.Purchase(context.Background(), buyer, 50)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if sale.Tokens != 100 || sale.Rate != 2 {
		t.Fatalf("expected 100 tokens at rate 2, got %d at %d", sale.Tokens, sale.Rate)
	}
	if got := f.balance(t, buyer); got != 100 {
		t.Fatalf("expected buyer balance 100, got %d", got)
	}
	if got := f.remaining(t); got != 10_000-100 {
		t.Fatalf("expected remaining 9900, got %d", got)
	}
	if got := f.gateway.ForwardedTo(beneficiary); got != 50 {
		t.Fatalf("expected 50 forwarded, got %d", got)
	}
	if got := f.gateway.Escrow(); got != 0 {
		t.Fatalf("expected drained escrow, got %d", got)
	}
}

func TestPurchaseRateChangeAppliesImmediately(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	if _, err := f.service.Purchase(context.Background(), buyer, 50); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	f.rates.SetRate(3)
	sale, err := f.service.Purchase(context.Background(), buyer, 50)
	if err != nil {
		t.Fatalf("second purchase failed: %v", err)
	}
	if sale.Tokens != 150 {
		t.Fatalf("expected 150 tokens after rate change, got %d", sale.Tokens)
	}
}

func TestPurchaseDeniedOutsideWindow(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	f.clock.now = openWindow().StartTime.Add(-time.Minute)
	if _, err := f.service.Purchase(context.Background(), buyer, 50); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied before start, got %v", err)
	}

	f.clock.now = openWindow().StopTime
	if _, err := f.service.Purchase(context.Background(), buyer, 50); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied at stop time, got %v", err)
	}
}

func TestPurchaseDeniedWhenCapDrained(t *testing.T) {
	window := openWindow()
	window.Remaining = 0
	f := newFixture(t, window, 2, 10_000)

	if _, err := f.service.Purchase(context.Background(), buyer, 50); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied with zero remaining, got %v", err)
	}
}

func TestPurchaseRequiresWhitelist(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	if _, err := f.service.Purchase(context.Background(), "mallory", 50); !errors.Is(err, domainerrors.ErrNotWhitelisted) {
		t.Fatalf("expected not whitelisted, got %v", err)
	}
}

func TestPurchaseEnforcesTransactionRange(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	if _, err := f.service.Purchase(context.Background(), buyer, 9); !errors.Is(err, domainerrors.ErrOutOfRange) {
		t.Fatalf("expected out of range below min, got %v", err)
	}
	if _, err := f.service.Purchase(context.Background(), buyer, 1_001); !errors.Is(err, domainerrors.ErrOutOfRange) {
		t.Fatalf("expected out of range above max, got %v", err)
	}
}

func TestPurchaseRejectsZeroRate(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)
	f.rates.SetRate(0)

	if _, err := f.service.Purchase(context.Background(), buyer, 50); !errors.Is(err, domainerrors.ErrZeroRate) {
		t.Fatalf("expected zero rate error, got %v", err)
	}
}

func TestPurchaseCapExceededLeavesStateUntouched(t *testing.T) {
	window := openWindow()
	window.Remaining = 99
	f := newFixture(t, window, 2, 10_000)

	_, err := f.service.Purchase(context.Background(), buyer, 50)
	if !errors.Is(err, domainerrors.ErrCapExceeded) {
		t.Fatalf("expected cap exceeded, got %v", err)
	}
	if got := f.remaining(t); got != 99 {
		t.Fatalf("expected remaining unchanged at 99, got %d", got)
	}
	if got := f.balance(t, buyer); got != 0 {
		t.Fatalf("expected buyer balance unchanged, got %d", got)
	}
	if got := f.gateway.Escrow(); got != 0 {
		t.Fatalf("expected empty escrow, got %d", got)
	}
}

func TestPurchaseForwardFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)
	f.gateway.ForwardErr = errors.New("beneficiary unreachable")

	_, err := f.service.Purchase(context.Background(), buyer, 50)
	if !errors.Is(err, domainerrors.ErrPaymentForwardFailed) {
		t.Fatalf("expected payment forward failed, got %v", err)
	}
	if got := f.remaining(t); got != 10_000 {
		t.Fatalf("expected remaining restored to 10000, got %d", got)
	}
	if got := f.balance(t, buyer); got != 0 {
		t.Fatalf("expected buyer balance restored to 0, got %d", got)
	}
	allowance, err := f.ledger.AllowanceOf(context.Background(), funding, spender)
	if err != nil {
		t.Fatalf("allowance read failed: %v", err)
	}
	if allowance != 10_000 {
		t.Fatalf("expected allowance restored to 10000, got %d", allowance)
	}
	if got := f.gateway.RefundedTo(buyer); got != 50 {
		t.Fatalf("expected 50 refunded to buyer, got %d", got)
	}
	sales, err := f.service.ListSales(context.Background(), 10)
	if err != nil || len(sales) != 0 {
		t.Fatalf("expected no recorded sale, got %v %v", sales, err)
	}
}

type failingSaleRepo struct {
	ports.SaleRepository
	err error
}

func (r failingSaleRepo) SaveSale(context.Context, entities.SaleRecord) error {
	return r.err
}

func TestPurchaseSaveFailureRollsBackLedgerState(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)
	saveErr := errors.New("sale store unavailable")
	f.service.Sales = failingSaleRepo{SaleRepository: f.store, err: saveErr}

	_, err := f.service.Purchase(context.Background(), buyer, 50)
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected save failure, got %v", err)
	}
	if got := f.remaining(t); got != 10_000 {
		t.Fatalf("expected remaining restored to 10000, got %d", got)
	}
	if got := f.balance(t, buyer); got != 0 {
		t.Fatalf("expected buyer balance restored to 0, got %d", got)
	}
	allowance, err := f.ledger.AllowanceOf(context.Background(), funding, spender)
	if err != nil {
		t.Fatalf("allowance read failed: %v", err)
	}
	if allowance != 10_000 {
		t.Fatalf("expected allowance restored to 10000, got %d", allowance)
	}
	// The payment already reached the beneficiary; the refund leg can
	// only be best-effort against the transport.
	if got := f.gateway.ForwardedTo(beneficiary); got != 50 {
		t.Fatalf("expected 50 forwarded, got %d", got)
	}
	sales, err := f.store.ListSales(context.Background(), 10)
	if err != nil || len(sales) != 0 {
		t.Fatalf("expected no recorded sale, got %v %v", sales, err)
	}
}

func TestIncreaseHardCapIsOwnerGated(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	if _, err := f.service.IncreaseHardCap(context.Background(), buyer, 500); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for non-owner, got %v", err)
	}

	window, err := f.service.IncreaseHardCap(context.Background(), owner, 500)
	if err != nil {
		t.Fatalf("cap increase failed: %v", err)
	}
	if window.HardCap != 10_500 || window.Remaining != 10_500 {
		t.Fatalf("expected cap and remaining at 10500, got %d/%d", window.HardCap, window.Remaining)
	}
}

func TestStatusDerivesPhase(t *testing.T) {
	f := newFixture(t, openWindow(), 2, 10_000)

	status, err := f.service.Status(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Phase != entities.PhaseOpen {
		t.Fatalf("expected open phase, got %s", status.Phase)
	}

	f.clock.now = openWindow().StopTime.Add(time.Hour)
	status, err = f.service.Status(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Phase != entities.PhaseClosed {
		t.Fatalf("expected closed phase, got %s", status.Phase)
	}
}
