package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "karat/contexts/distribution/airdrop-service/application"
	"karat/contexts/distribution/airdrop-service/ports"
)

// OutboxRelay publishes pending airdrop events to the message bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("airdrop outbox list failed",
			"event", "airdrop_outbox_list_failed",
			"module", "distribution/airdrop-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return err
		}
		if err := r.Publisher.Publish(ctx, row.EventType, envelope); err != nil {
			logger.Error("airdrop outbox publish failed",
				"event", "airdrop_outbox_publish_failed",
				"module", "distribution/airdrop-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
