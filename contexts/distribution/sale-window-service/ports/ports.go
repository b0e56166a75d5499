package ports

import (
	"context"
	"time"

	"karat/contexts/distribution/sale-window-service/domain/entities"
	"karat/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// TokenLedger is the slice of the ledger the window needs: delegated
// transfers out of the funding account plus the primitives used to
// compensate a failed purchase.
type TokenLedger interface {
	TransferFrom(ctx context.Context, spender string, from string, to string, value uint64) error
	Transfer(ctx context.Context, caller string, to string, value uint64) error
	IncreaseApproval(ctx context.Context, caller string, spender string, delta uint64) (uint64, error)
}

// AccessControl gates the cap increase.
type AccessControl interface {
	IsOwner(ctx context.Context, account string) (bool, error)
}

type Whitelist interface {
	IsWhitelisted(ctx context.Context, account string) (bool, error)
}

// RateSource quotes tokens per payment unit. It is consulted on every
// purchase and never cached.
type RateSource interface {
	CurrentRate(ctx context.Context) (uint64, error)
}

// PaymentGateway moves payment value in and out of the window's escrow.
// Forward reports failure explicitly so the caller can compensate.
type PaymentGateway interface {
	Collect(ctx context.Context, payer string, value uint64) error
	Forward(ctx context.Context, beneficiary string, value uint64) error
	Refund(ctx context.Context, payer string, value uint64) error
}

// WindowRepository owns the window state. DebitRemaining applies the
// cap check and the decrement in one critical section.
type WindowRepository interface {
	Window(ctx context.Context) (entities.WindowState, error)
	DebitRemaining(ctx context.Context, tokens uint64) error
	CreditRemaining(ctx context.Context, tokens uint64) error
	IncreaseCap(ctx context.Context, amount uint64) (entities.WindowState, error)
}

type SaleRepository interface {
	SaveSale(ctx context.Context, sale entities.SaleRecord) error
	GetSale(ctx context.Context, saleID string) (entities.SaleRecord, error)
	ListSales(ctx context.Context, limit int) ([]entities.SaleRecord, error)
	SummarizeSales(ctx context.Context) (entities.SalesSummary, error)
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
