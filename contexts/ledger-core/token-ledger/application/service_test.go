package application

import (
	"context"
	"errors"
	"testing"

	"karat/contexts/ledger-core/token-ledger/adapters/memory"
	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/internal/shared/events"
)

type ownerOnlyAccess struct {
	owner string
}

func (a ownerOnlyAccess) IsOwner(_ context.Context, account string) (bool, error) {
	return account == a.owner, nil
}

func newTestService(t *testing.T, owner string, supply uint64) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Seed(owner, supply); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return Service{
		Book:   store,
		Outbox: store,
		Access: ownerOnlyAccess{owner: owner},
		Clock:  store,
		IDGen:  store,
	}, store
}

func sumBalances(t *testing.T, service Service, accounts ...string) uint64 {
	t.Helper()
	var total uint64
	for _, account := range accounts {
		balance, err := service.BalanceOf(context.Background(), account)
		if err != nil {
			t.Fatalf("balance of %s failed: %v", account, err)
		}
		total += balance
	}
	return total
}

func TestTransferConservation(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Transfer(context.Background(), "alice", "bob", 300); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.Transfer(context.Background(), "bob", "carol", 120); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	supply, err := service.TotalSupply(context.Background())
	if err != nil {
		t.Fatalf("total supply failed: %v", err)
	}
	if supply != 1000 {
		t.Fatalf("supply changed: %d", supply)
	}
	if got := sumBalances(t, service, "alice", "bob", "carol"); got != 1000 {
		t.Fatalf("conservation violated: sum %d", got)
	}
}

func TestSelfTransferLeavesBookUnchanged(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Transfer(context.Background(), "alice", "alice", 100); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}
	if err := service.Approve(context.Background(), "alice", "bob", 100); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := service.TransferFrom(context.Background(), "bob", "alice", "alice", 100); err != nil {
		t.Fatalf("delegated self transfer failed: %v", err)
	}

	supply, err := service.TotalSupply(context.Background())
	if err != nil {
		t.Fatalf("total supply failed: %v", err)
	}
	if supply != 1000 {
		t.Fatalf("supply changed: %d", supply)
	}
	if got := sumBalances(t, service, "alice", "bob"); got != 1000 {
		t.Fatalf("conservation violated: sum %d", got)
	}
}

func TestTransferOutboxCarriesCanonicalEventTypes(t *testing.T) {
	service, store := newTestService(t, "alice", 1000)

	if err := service.Transfer(context.Background(), "alice", "bob", 10); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.Approve(context.Background(), "alice", "bob", 5); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	rows, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 outbox rows, got %d", len(rows))
	}
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row.EventType] = true
	}
	if !seen[events.TypeTransfer] || !seen[events.TypeApproval] {
		t.Fatalf("expected transfer and approval event types, got %v", seen)
	}
}

func TestTransferRoundTripRestoresBalances(t *testing.T) {
	service, _ := newTestService(t, "alice", 500)

	if err := service.Transfer(context.Background(), "alice", "bob", 200); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.Transfer(context.Background(), "bob", "alice", 200); err != nil {
		t.Fatalf("return transfer failed: %v", err)
	}

	alice, _ := service.BalanceOf(context.Background(), "alice")
	bob, _ := service.BalanceOf(context.Background(), "bob")
	if alice != 500 || bob != 0 {
		t.Fatalf("round trip did not restore balances: alice=%d bob=%d", alice, bob)
	}
}

func TestTransferRejectsNullAccountAndOverdraft(t *testing.T) {
	service, _ := newTestService(t, "alice", 100)

	if err := service.Transfer(context.Background(), "alice", "", 10); err != domainerrors.ErrInvalidAccount {
		t.Fatalf("expected invalid account, got %v", err)
	}
	if err := service.Transfer(context.Background(), "alice", "bob", 101); err != domainerrors.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	balance, _ := service.BalanceOf(context.Background(), "alice")
	if balance != 100 {
		t.Fatalf("failed transfer mutated balance: %d", balance)
	}
}

func TestAllowanceConsumption(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Approve(context.Background(), "alice", "bob", 100); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := service.TransferFrom(context.Background(), "bob", "alice", "carol", 60); err != nil {
		t.Fatalf("transfer from failed: %v", err)
	}

	allowance, err := service.AllowanceOf(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("allowance read failed: %v", err)
	}
	if allowance != 40 {
		t.Fatalf("expected allowance 40, got %d", allowance)
	}

	err = service.TransferFrom(context.Background(), "bob", "alice", "carol", 50)
	if !errors.Is(err, domainerrors.ErrInsufficientAllowance) {
		t.Fatalf("expected insufficient allowance, got %v", err)
	}
	allowance, _ = service.AllowanceOf(context.Background(), "alice", "bob")
	if allowance != 40 {
		t.Fatalf("failed spend mutated allowance: %d", allowance)
	}
	carol, _ := service.BalanceOf(context.Background(), "carol")
	if carol != 60 {
		t.Fatalf("expected carol balance 60, got %d", carol)
	}
}

func TestDecreaseApprovalSaturatesAtZero(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Approve(context.Background(), "alice", "bob", 30); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	allowance, err := service.DecreaseApproval(context.Background(), "alice", "bob", 100)
	if err != nil {
		t.Fatalf("excess decrease must not fail: %v", err)
	}
	if allowance != 0 {
		t.Fatalf("expected allowance 0, got %d", allowance)
	}
}

func TestIncreaseApprovalAccumulates(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if _, err := service.IncreaseApproval(context.Background(), "alice", "bob", 25); err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	allowance, err := service.IncreaseApproval(context.Background(), "alice", "bob", 15)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if allowance != 40 {
		t.Fatalf("expected allowance 40, got %d", allowance)
	}
}

func TestHolderRegistryInsertionOrderAndDedup(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Transfer(context.Background(), "alice", "bob", 10); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.Transfer(context.Background(), "alice", "carol", 10); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.Transfer(context.Background(), "alice", "bob", 10); err != nil {
		t.Fatalf("repeat transfer failed: %v", err)
	}
	// Spending a full balance must not remove the holder entry.
	if err := service.Transfer(context.Background(), "carol", "alice", 10); err != nil {
		t.Fatalf("spend-down failed: %v", err)
	}

	holders, err := service.Holders(context.Background())
	if err != nil {
		t.Fatalf("holders failed: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(holders) != len(want) {
		t.Fatalf("expected %d holders, got %v", len(want), holders)
	}
	for i, account := range want {
		if holders[i] != account {
			t.Fatalf("holder order mismatch at %d: %v", i, holders)
		}
	}
}

func TestZeroValueTransferDoesNotRegisterHolder(t *testing.T) {
	service, _ := newTestService(t, "alice", 100)

	if err := service.Transfer(context.Background(), "alice", "bob", 0); err != nil {
		t.Fatalf("zero transfer failed: %v", err)
	}
	holders, _ := service.Holders(context.Background())
	if len(holders) != 1 || holders[0] != "alice" {
		t.Fatalf("zero credit registered a holder: %v", holders)
	}
}

func TestMintAndBurnAdjustSupply(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	if err := service.Mint(context.Background(), "alice", "bob", 500); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	supply, _ := service.TotalSupply(context.Background())
	if supply != 1500 {
		t.Fatalf("expected supply 1500, got %d", supply)
	}

	if err := service.Burn(context.Background(), "alice", 250); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	supply, _ = service.TotalSupply(context.Background())
	if supply != 1250 {
		t.Fatalf("expected supply 1250, got %d", supply)
	}
	if got := sumBalances(t, service, "alice", "bob"); got != supply {
		t.Fatalf("conservation violated after mint/burn: sum %d supply %d", got, supply)
	}
}

func TestMintRequiresOwner(t *testing.T) {
	service, _ := newTestService(t, "alice", 1000)

	err := service.Mint(context.Background(), "bob", "bob", 500)
	if !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	supply, _ := service.TotalSupply(context.Background())
	if supply != 1000 {
		t.Fatalf("denied mint changed supply: %d", supply)
	}
}

func TestBurnMoreThanBalanceFails(t *testing.T) {
	service, _ := newTestService(t, "alice", 100)

	err := service.Burn(context.Background(), "alice", 101)
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}
