package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "karat/contexts/ledger-core/token-ledger/application"
	"karat/contexts/ledger-core/token-ledger/domain/entities"
	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/contexts/ledger-core/token-ledger/ports"
	"karat/internal/shared/events"
)

const (
	transferTopic           = events.TypeTransfer
	approvalTopic           = events.TypeApproval
	defaultArchiveGroupName = "token-ledger-archive-cg"
)

type transferPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Value   uint64 `json:"value"`
	Kind    string `json:"kind"`
	Spender string `json:"spender"`
}

type approvalPayload struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   uint64 `json:"value"`
}

// ArchiveConsumer mirrors published ledger events into the durable record
// archive. Event replays converge on the same rows because the event ID is
// reused as the record ID.
type ArchiveConsumer struct {
	Subscriber    ports.EventSubscriber
	Archive       ports.RecordArchive
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c ArchiveConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := c.ConsumerGroup
	if group == "" {
		group = defaultArchiveGroupName
	}
	if err := c.Subscriber.Subscribe(ctx, transferTopic, group, c.handleTransfer); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, approvalTopic, group, c.handleApproval); err != nil {
		return err
	}
	logger.Info("ledger archive consumer subscribed",
		"event", "ledger_archive_consumer_subscribed",
		"module", "ledger-core/token-ledger",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ArchiveConsumer) handleTransfer(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var payload transferPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ledger transfer event decode failed",
			"event", "ledger_archive_transfer_decode_failed",
			"module", "ledger-core/token-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if payload.From == "" && payload.To == "" {
		return domainerrors.ErrInvalidLedgerInput
	}

	record := entities.TransferRecord{
		ID:         event.EventID,
		From:       payload.From,
		To:         payload.To,
		Value:      payload.Value,
		Kind:       entities.TransferKind(payload.Kind),
		Spender:    payload.Spender,
		OccurredAt: event.OccurredAt,
	}
	if err := c.Archive.SaveTransferRecord(ctx, record); err != nil {
		return err
	}
	if payload.To != "" && payload.Value > 0 {
		return c.Archive.SaveHolderRecord(ctx, entities.HolderRecord{
			Account:       payload.To,
			FirstCreditAt: event.OccurredAt,
		})
	}
	return nil
}

func (c ArchiveConsumer) handleApproval(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var payload approvalPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ledger approval event decode failed",
			"event", "ledger_archive_approval_decode_failed",
			"module", "ledger-core/token-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if payload.Owner == "" || payload.Spender == "" {
		return domainerrors.ErrInvalidLedgerInput
	}
	return c.Archive.SaveApprovalRecord(ctx, entities.ApprovalRecord{
		ID:         event.EventID,
		Owner:      payload.Owner,
		Spender:    payload.Spender,
		Value:      payload.Value,
		OccurredAt: event.OccurredAt,
	})
}
