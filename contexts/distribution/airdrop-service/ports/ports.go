package ports

import (
	"context"
	"time"

	"karat/contexts/distribution/airdrop-service/domain/entities"
	"karat/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// TokenLedger is the slice of the ledger the distributor needs: the
// holder registry snapshot, balance reads, and direct transfers out of
// the funding account.
type TokenLedger interface {
	Holders(ctx context.Context) ([]string, error)
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Transfer(ctx context.Context, caller string, to string, value uint64) error
}

// AccessControl gates the run trigger and the flag setters.
type AccessControl interface {
	IsAuthorized(ctx context.Context, account string) (bool, error)
}

// FlagRepository stores the eligibility flags per account.
type FlagRepository interface {
	FlagsOf(ctx context.Context, account string) (entities.AccountFlags, error)
	SetTreasuryBox(ctx context.Context, account string, flag bool) error
	SetExchanger(ctx context.Context, account string, flag bool) error
	SetDestination(ctx context.Context, account string, destination string) error
}

// RunRepository persists distribution run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, run entities.AirdropRun) error
	GetRun(ctx context.Context, runID string) (entities.AirdropRun, error)
	ListRuns(ctx context.Context, limit int) ([]entities.AirdropRun, error)
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
