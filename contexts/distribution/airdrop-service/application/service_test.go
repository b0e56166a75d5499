package application

import (
	"context"
	"errors"
	"testing"

	"karat/contexts/distribution/airdrop-service/adapters/memory"
	domainerrors "karat/contexts/distribution/airdrop-service/domain/errors"
	ledgermemory "karat/contexts/ledger-core/token-ledger/adapters/memory"
	ledgerapp "karat/contexts/ledger-core/token-ledger/application"
)

const funding = "treasury"

type allowAll struct{}

func (allowAll) IsAuthorized(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type fixture struct {
	service Service
	ledger  ledgerapp.Service
}

func newFixture(t *testing.T, fundingBalance uint64, minHolderBalance uint64) fixture {
	t.Helper()
	book := ledgermemory.NewStore()
	if err := book.Seed(funding, fundingBalance); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	ledger := ledgerapp.Service{
		Book:  book,
		Clock: book,
		IDGen: book,
	}
	store := memory.NewStore()
	return fixture{
		service: Service{
			Ledger:           ledger,
			Flags:            store,
			Runs:             store,
			Outbox:           store,
			Access:           allowAll{},
			Clock:            store,
			IDGen:            store,
			FundingAccount:   funding,
			MinHolderBalance: minHolderBalance,
		},
		ledger: ledger,
	}
}

func (f fixture) credit(t *testing.T, account string, value uint64) {
	t.Helper()
	if err := f.ledger.Transfer(context.Background(), funding, account, value); err != nil {
		t.Fatalf("credit %s failed: %v", account, err)
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

func TestRunExactProportionalShares(t *testing.T) {
	f := newFixture(t, 2000, 1)
	f.credit(t, "bob", 100)
	f.credit(t, "carol", 200)

	run, err := f.service.Run(context.Background(), "operator", 900)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if run.EligibleTotal != 300 {
		t.Fatalf("expected eligible total 300, got %d", run.EligibleTotal)
	}
	if got := f.balance(t, "bob"); got != 100+300 {
		t.Fatalf("expected bob 400, got %d", got)
	}
	if got := f.balance(t, "carol"); got != 200+600 {
		t.Fatalf("expected carol 800, got %d", got)
	}
	if run.Distributed != 900 {
		t.Fatalf("expected 900 distributed, got %d", run.Distributed)
	}
}

func TestRunFloorSharesLeaveDustWithFunding(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.credit(t, "bob", 1)
	f.credit(t, "carol", 2)

	fundingBefore := f.balance(t, funding)
	run, err := f.service.Run(context.Background(), "operator", 100)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := f.balance(t, "bob"); got != 1+33 {
		t.Fatalf("expected bob 34, got %d", got)
	}
	if got := f.balance(t, "carol"); got != 2+66 {
		t.Fatalf("expected carol 68, got %d", got)
	}
	if run.Distributed != 99 {
		t.Fatalf("expected 99 distributed, got %d", run.Distributed)
	}
	// One unit of rounding dust never leaves the funding account.
	if got := f.balance(t, funding); got != fundingBefore-99 {
		t.Fatalf("expected funding %d, got %d", fundingBefore-99, got)
	}
}

func TestRunEmptyPoolWhenNoEligibleBalance(t *testing.T) {
	f := newFixture(t, 1000, 1)

	_, err := f.service.Run(context.Background(), "operator", 100)
	if !errors.Is(err, domainerrors.ErrEmptyPool) {
		t.Fatalf("expected empty pool, got %v", err)
	}
}

func TestRunRequiresAuthorization(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.service.Access = nil

	_, err := f.service.Run(context.Background(), "anyone", 100)
	if !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestEligibilityThresholdAndTreasuryBox(t *testing.T) {
	f := newFixture(t, 1000, 50)
	f.credit(t, "small", 10)
	f.credit(t, "big", 100)
	f.credit(t, "boxed", 100)
	if err := f.service.MarkTreasuryBox(context.Background(), "boxed"); err != nil {
		t.Fatalf("mark treasury box failed: %v", err)
	}

	ok, err := f.service.Eligible(context.Background(), "small", 10)
	if err != nil || ok {
		t.Fatalf("below-threshold holder must be ineligible: %v %v", ok, err)
	}
	ok, _ = f.service.Eligible(context.Background(), "big", 100)
	if !ok {
		t.Fatal("threshold holder must be eligible")
	}
	ok, _ = f.service.Eligible(context.Background(), "boxed", 100)
	if ok {
		t.Fatal("treasury box must be ineligible on the balance arm")
	}
	ok, _ = f.service.Eligible(context.Background(), funding, 1000)
	if ok {
		t.Fatal("funding account must be ineligible")
	}
}

func TestExchangerFlagOverridesThreshold(t *testing.T) {
	f := newFixture(t, 1000, 50)
	if err := f.service.SetExchanger(context.Background(), "operator", "exchange", true); err != nil {
		t.Fatalf("set exchanger failed: %v", err)
	}

	// Exchanger-flagged accounts are eligible regardless of balance.
	ok, err := f.service.Eligible(context.Background(), "exchange", 0)
	if err != nil || !ok {
		t.Fatalf("exchanger must be eligible at zero balance: %v %v", ok, err)
	}

	// So is an account redirecting to a flagged exchanger.
	if err := f.service.SetDestination(context.Background(), "operator", "small", "exchange"); err != nil {
		t.Fatalf("set destination failed: %v", err)
	}
	ok, _ = f.service.Eligible(context.Background(), "small", 10)
	if !ok {
		t.Fatal("holder redirecting to an exchanger must be eligible")
	}
}

func TestRunRedirectsSharesToExchanger(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.credit(t, "bob", 100)
	if err := f.service.SetExchanger(context.Background(), "operator", "exchange", true); err != nil {
		t.Fatalf("set exchanger failed: %v", err)
	}
	if err := f.service.SetDestination(context.Background(), "operator", "bob", "exchange"); err != nil {
		t.Fatalf("set destination failed: %v", err)
	}

	if _, err := f.service.Run(context.Background(), "operator", 300); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// Bob's share lands on the exchange account; bob keeps the snapshot
	// balance used to size the share.
	if got := f.balance(t, "bob"); got != 100 {
		t.Fatalf("expected bob 100, got %d", got)
	}
	if got := f.balance(t, "exchange"); got != 300 {
		t.Fatalf("expected exchange 300, got %d", got)
	}
}

func TestRunRedirectBackToFundingConservesSupply(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.credit(t, "bob", 100)
	if err := f.service.SetExchanger(context.Background(), "operator", funding, true); err != nil {
		t.Fatalf("set exchanger failed: %v", err)
	}
	if err := f.service.SetDestination(context.Background(), "operator", "bob", funding); err != nil {
		t.Fatalf("set destination failed: %v", err)
	}

	if _, err := f.service.Run(context.Background(), "operator", 300); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// The share is debited from and credited to the funding account, so
	// the book must not move.
	if got := f.balance(t, funding); got != 900 {
		t.Fatalf("expected funding 900, got %d", got)
	}
	if got := f.balance(t, "bob"); got != 100 {
		t.Fatalf("expected bob 100, got %d", got)
	}
	supply, err := f.ledger.TotalSupply(context.Background())
	if err != nil {
		t.Fatalf("total supply failed: %v", err)
	}
	if supply != 1000 {
		t.Fatalf("supply changed: %d", supply)
	}
}

func TestRunUnflaggedDestinationIsIgnored(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.credit(t, "bob", 100)
	if err := f.service.SetDestination(context.Background(), "operator", "bob", "friend"); err != nil {
		t.Fatalf("set destination failed: %v", err)
	}

	if _, err := f.service.Run(context.Background(), "operator", 300); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := f.balance(t, "bob"); got != 400 {
		t.Fatalf("share must go to the holder when the destination is unflagged, bob=%d", got)
	}
	if got := f.balance(t, "friend"); got != 0 {
		t.Fatalf("unflagged destination must receive nothing, friend=%d", got)
	}
}

func TestRunPartialFailureOnFundingShortfall(t *testing.T) {
	f := newFixture(t, 1000, 1)
	f.credit(t, "bob", 100)
	f.credit(t, "carol", 200)
	// Funding now holds 700; shares for pool 900 are 300 then 600.

	_, err := f.service.Run(context.Background(), "operator", 900)
	if !errors.Is(err, domainerrors.ErrInsufficientFunding) {
		t.Fatalf("expected insufficient funding, got %v", err)
	}
	// The first share stays applied; the failing one does not.
	if got := f.balance(t, "bob"); got != 400 {
		t.Fatalf("expected bob 400 after partial run, got %d", got)
	}
	if got := f.balance(t, "carol"); got != 200 {
		t.Fatalf("expected carol untouched at 200, got %d", got)
	}

	runs, err := f.service.ListRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one recorded run: %v %v", runs, err)
	}
	if runs[0].Status != "failed" || runs[0].TransferCount != 1 {
		t.Fatalf("expected failed run with one transfer, got %+v", runs[0])
	}
}
