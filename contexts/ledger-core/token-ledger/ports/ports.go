package ports

import (
	"context"
	"time"

	"karat/contexts/ledger-core/token-ledger/domain/entities"
	"karat/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for records and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AccessControl gates the privileged supply operations (mint, burn).
type AccessControl interface {
	IsOwner(ctx context.Context, account string) (bool, error)
}

// Book is the balance/allowance state boundary. Implementations apply
// each compound mutation atomically: either every balance and allowance
// touched by a call moves, or none do.
type Book interface {
	Transfer(ctx context.Context, from string, to string, value uint64) error
	TransferFrom(ctx context.Context, spender string, from string, to string, value uint64) error
	SetAllowance(ctx context.Context, owner string, spender string, value uint64) error
	AdjustAllowance(ctx context.Context, owner string, spender string, delta uint64, increase bool) (uint64, error)
	Mint(ctx context.Context, to string, value uint64) error
	Burn(ctx context.Context, from string, value uint64) error

	BalanceOf(ctx context.Context, account string) (uint64, error)
	AllowanceOf(ctx context.Context, owner string, spender string) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
	Holders(ctx context.Context) ([]string, error)
}

type EventEnvelope = events.Envelope

// OutboxWriter appends an event record for the worker relay to publish.
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

// EventPublisher and EventSubscriber are the message bus boundary used by
// the worker relay and the archive consumer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

// RecordArchive mirrors applied ledger records into durable storage for
// external indexers. It is downstream of the authoritative book: archive
// failures never roll a ledger mutation back.
type RecordArchive interface {
	SaveTransferRecord(ctx context.Context, record entities.TransferRecord) error
	SaveApprovalRecord(ctx context.Context, record entities.ApprovalRecord) error
	SaveHolderRecord(ctx context.Context, record entities.HolderRecord) error
}
