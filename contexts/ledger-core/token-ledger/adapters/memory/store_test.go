package memory

import (
	"context"
	"testing"
	"time"

	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/contexts/ledger-core/token-ledger/ports"
)

func TestSeedIsOneShot(t *testing.T) {
	store := NewStore()
	if err := store.Seed("owner", 100); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := store.Seed("owner", 100); err != domainerrors.ErrSupplyAlreadySeeded {
		t.Fatalf("expected seed rejection, got %v", err)
	}

	holders, _ := store.Holders(context.Background())
	if len(holders) != 1 || holders[0] != "owner" {
		t.Fatalf("owner not registered as first holder: %v", holders)
	}
}

func TestTransferFromAtomicUnderAllowanceFailure(t *testing.T) {
	store := NewStore()
	if err := store.Seed("owner", 100); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := store.SetAllowance(context.Background(), "owner", "spender", 10); err != nil {
		t.Fatalf("set allowance failed: %v", err)
	}

	err := store.TransferFrom(context.Background(), "spender", "owner", "dest", 11)
	if err != domainerrors.ErrInsufficientAllowance {
		t.Fatalf("expected insufficient allowance, got %v", err)
	}
	balance, _ := store.BalanceOf(context.Background(), "owner")
	if balance != 100 {
		t.Fatalf("failed transfer mutated balance: %d", balance)
	}
	allowance, _ := store.AllowanceOf(context.Background(), "owner", "spender")
	if allowance != 10 {
		t.Fatalf("failed transfer mutated allowance: %d", allowance)
	}
}

func TestSelfTransferConservesSupply(t *testing.T) {
	store := NewStore()
	if err := store.Seed("alice", 1000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := store.Transfer(context.Background(), "alice", "alice", 100); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}
	balance, _ := store.BalanceOf(context.Background(), "alice")
	supply, _ := store.TotalSupply(context.Background())
	if balance != 1000 || supply != 1000 {
		t.Fatalf("self transfer changed the book: balance=%d supply=%d", balance, supply)
	}

	if err := store.SetAllowance(context.Background(), "alice", "bob", 100); err != nil {
		t.Fatalf("set allowance failed: %v", err)
	}
	if err := store.TransferFrom(context.Background(), "bob", "alice", "alice", 100); err != nil {
		t.Fatalf("delegated self transfer failed: %v", err)
	}
	balance, _ = store.BalanceOf(context.Background(), "alice")
	supply, _ = store.TotalSupply(context.Background())
	if balance != 1000 || supply != 1000 {
		t.Fatalf("delegated self transfer changed the book: balance=%d supply=%d", balance, supply)
	}
	allowance, _ := store.AllowanceOf(context.Background(), "alice", "bob")
	if allowance != 0 {
		t.Fatalf("delegated self transfer did not consume allowance: %d", allowance)
	}

	if err := store.Transfer(context.Background(), "alice", "alice", 1001); err != domainerrors.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance on oversized self transfer, got %v", err)
	}
}

func TestOutboxPendingThenPublished(t *testing.T) {
	store := NewStore()
	envelope := ports.EventEnvelope{
		EventID:    "evt-1",
		EventType:  "ledger.transfer",
		OccurredAt: time.Now().UTC(),
	}
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Replays of the same event ID are no-ops.
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("replay append failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending row, got %d", len(pending))
	}

	if err := store.MarkOutboxPublished(context.Background(), "evt-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, _ = store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty pending set, got %d", len(pending))
	}
}
