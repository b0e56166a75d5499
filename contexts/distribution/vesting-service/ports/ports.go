package ports

import (
	"context"
	"time"

	"karat/contexts/distribution/vesting-service/domain/entities"
	"karat/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// TokenLedger is the slice of the ledger the vesting service needs:
// box balance reads, delegated transfers out of the funding account and
// direct transfers out of box accounts.
type TokenLedger interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Transfer(ctx context.Context, caller string, to string, value uint64) error
	TransferFrom(ctx context.Context, spender string, from string, to string, value uint64) error
}

// AccessControl gates founder registration and grants.
type AccessControl interface {
	IsOwner(ctx context.Context, account string) (bool, error)
}

// TreasuryMarker flags a box account in the airdrop flag store so the
// locked balance never counts toward distribution eligibility.
type TreasuryMarker interface {
	MarkTreasuryBox(ctx context.Context, account string) error
}

type BoxRepository interface {
	SaveBox(ctx context.Context, box entities.VestingBox) error
	GetBox(ctx context.Context, boxID string) (entities.VestingBox, error)
	ListBoxesByBeneficiary(ctx context.Context, beneficiary string) ([]entities.VestingBox, error)
}

// FounderRegistry is the pre-registered set a grant recipient must
// belong to.
type FounderRegistry interface {
	IsFounder(ctx context.Context, account string) (bool, error)
	AddFounder(ctx context.Context, account string) error
}

// PoolRepository owns the grant budget. DebitPool applies the bounds
// check and the decrement in one critical section.
type PoolRepository interface {
	Pool(ctx context.Context) (entities.GrantPool, error)
	DebitPool(ctx context.Context, total uint64) error
	CreditPool(ctx context.Context, total uint64) error
}

type GrantRepository interface {
	SaveGrant(ctx context.Context, grant entities.GrantRecord) error
	GetGrant(ctx context.Context, grantID string) (entities.GrantRecord, error)
	ListGrants(ctx context.Context, limit int) ([]entities.GrantRecord, error)
}

type EventEnvelope = events.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
