package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/contexts/ledger-core/token-ledger/ports"
	"karat/internal/shared/events"
)

const sourceService = "token-ledger"

// Service exposes the ledger operations. Mutations run against the Book,
// which applies each call atomically; the service layers account-shape
// validation, capability checks and event emission on top.
type Service struct {
	Book   ports.Book
	Outbox ports.OutboxWriter
	Access ports.AccessControl
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (s Service) Transfer(ctx context.Context, caller string, to string, value uint64) error {
	caller = strings.TrimSpace(caller)
	to = strings.TrimSpace(to)
	if caller == "" || to == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.Book.Transfer(ctx, caller, to, value); err != nil {
		return err
	}
	s.emitTransfer(ctx, caller, to, value, "transfer", "")
	ResolveLogger(s.Logger).Info("transfer applied",
		"event", "ledger_transfer_applied",
		"module", "ledger-core/token-ledger",
		"layer", "application",
		"from", caller,
		"to", to,
		"value", value,
	)
	return nil
}

func (s Service) TransferFrom(ctx context.Context, spender string, from string, to string, value uint64) error {
	spender = strings.TrimSpace(spender)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if spender == "" || from == "" || to == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.Book.TransferFrom(ctx, spender, from, to, value); err != nil {
		return err
	}
	s.emitTransfer(ctx, from, to, value, "transfer", spender)
	ResolveLogger(s.Logger).Info("delegated transfer applied",
		"event", "ledger_transfer_from_applied",
		"module", "ledger-core/token-ledger",
		"layer", "application",
		"spender", spender,
		"from", from,
		"to", to,
		"value", value,
	)
	return nil
}

// Approve overwrites the allowance unconditionally. Owners moving between
// two nonzero values should prefer IncreaseApproval/DecreaseApproval.
func (s Service) Approve(ctx context.Context, caller string, spender string, value uint64) error {
	caller = strings.TrimSpace(caller)
	spender = strings.TrimSpace(spender)
	if caller == "" || spender == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.Book.SetAllowance(ctx, caller, spender, value); err != nil {
		return err
	}
	s.emitApproval(ctx, caller, spender, value)
	return nil
}

func (s Service) IncreaseApproval(ctx context.Context, caller string, spender string, delta uint64) (uint64, error) {
	return s.adjustApproval(ctx, caller, spender, delta, true)
}

// DecreaseApproval saturates at zero when delta exceeds the current
// allowance; excess decrease is not an error.
func (s Service) DecreaseApproval(ctx context.Context, caller string, spender string, delta uint64) (uint64, error) {
	return s.adjustApproval(ctx, caller, spender, delta, false)
}

func (s Service) adjustApproval(ctx context.Context, caller string, spender string, delta uint64, increase bool) (uint64, error) {
	caller = strings.TrimSpace(caller)
	spender = strings.TrimSpace(spender)
	if caller == "" || spender == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	allowance, err := s.Book.AdjustAllowance(ctx, caller, spender, delta, increase)
	if err != nil {
		return 0, err
	}
	s.emitApproval(ctx, caller, spender, allowance)
	return allowance, nil
}

// Mint credits new supply to an account. Owner only.
func (s Service) Mint(ctx context.Context, caller string, to string, value uint64) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.Book.Mint(ctx, to, value); err != nil {
		return err
	}
	s.emitTransfer(ctx, "", to, value, "mint", "")
	ResolveLogger(s.Logger).Info("supply minted",
		"event", "ledger_supply_minted",
		"module", "ledger-core/token-ledger",
		"layer", "application",
		"to", to,
		"value", value,
	)
	return nil
}

// Burn destroys value from the caller's own balance. Owner only.
func (s Service) Burn(ctx context.Context, caller string, value uint64) error {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.Book.Burn(ctx, caller, value); err != nil {
		return err
	}
	s.emitTransfer(ctx, caller, "", value, "burn", "")
	ResolveLogger(s.Logger).Info("supply burned",
		"event", "ledger_supply_burned",
		"module", "ledger-core/token-ledger",
		"layer", "application",
		"from", caller,
		"value", value,
	)
	return nil
}

func (s Service) BalanceOf(ctx context.Context, account string) (uint64, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	return s.Book.BalanceOf(ctx, account)
}

func (s Service) AllowanceOf(ctx context.Context, owner string, spender string) (uint64, error) {
	owner = strings.TrimSpace(owner)
	spender = strings.TrimSpace(spender)
	if owner == "" || spender == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	return s.Book.AllowanceOf(ctx, owner, spender)
}

func (s Service) TotalSupply(ctx context.Context) (uint64, error) {
	return s.Book.TotalSupply(ctx)
}

// Holders returns the registry snapshot in insertion order: every account
// that ever received a nonzero credit, whether or not it still holds one.
func (s Service) Holders(ctx context.Context) ([]string, error) {
	return s.Book.Holders(ctx)
}

func (s Service) requireOwner(ctx context.Context, caller string) error {
	if s.Access == nil {
		return domainerrors.ErrAccessDenied
	}
	ok, err := s.Access.IsOwner(ctx, strings.TrimSpace(caller))
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}

func (s Service) emitTransfer(ctx context.Context, from string, to string, value uint64, kind string, spender string) {
	s.appendOutbox(ctx, events.TypeTransfer, firstNonEmpty(from, to), map[string]any{
		"from":    from,
		"to":      to,
		"value":   value,
		"kind":    kind,
		"spender": spender,
	})
}

func (s Service) emitApproval(ctx context.Context, owner string, spender string, value uint64) {
	s.appendOutbox(ctx, events.TypeApproval, owner, map[string]any{
		"owner":   owner,
		"spender": spender,
		"value":   value,
	})
}

func (s Service) appendOutbox(ctx context.Context, eventType string, partitionKey string, payload map[string]any) {
	if s.Outbox == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	eventID, err := s.newID(ctx)
	if err != nil {
		logger.Error("ledger outbox id generation failed",
			"event", "ledger_outbox_id_failed",
			"module", "ledger-core/token-ledger",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ledger outbox payload marshal failed",
			"event", "ledger_outbox_marshal_failed",
			"module", "ledger-core/token-ledger",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	if err := s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "account",
		PartitionKey:     partitionKey,
		Data:             data,
	}); err != nil {
		logger.Error("ledger outbox append failed",
			"event", "ledger_outbox_append_failed",
			"module", "ledger-core/token-ledger",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGen == nil {
		return "", domainerrors.ErrInvalidLedgerInput
	}
	return s.IDGen.NewID(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
