package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"karat/contexts/distribution/airdrop-service/domain/entities"
	domainerrors "karat/contexts/distribution/airdrop-service/domain/errors"
	"karat/contexts/distribution/airdrop-service/ports"
	"karat/internal/shared/events"
	"karat/internal/shared/safemath"
)

const sourceService = "airdrop-service"

type Service struct {
	Ledger ports.TokenLedger
	Flags  ports.FlagRepository
	Runs   ports.RunRepository
	Outbox ports.OutboxWriter
	Access ports.AccessControl
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger

	// FundingAccount sources every distributed share. MinHolderBalance
	// is the threshold for balance-based eligibility.
	FundingAccount   string
	MinHolderBalance uint64
}

// shareSlot is one eligible holder captured during pass one: the balance
// snapshot and the already-resolved recipient.
type shareSlot struct {
	Holder    string
	Balance   uint64
	Recipient string
}

// Eligible evaluates the eligibility predicate against current flags and
// the given balance. The three arms deliberately overlap: an
// exchanger-flagged account, or one redirecting to a flagged exchanger,
// is eligible regardless of balance or the treasury-box mark.
func (s Service) Eligible(ctx context.Context, account string, balance uint64) (bool, error) {
	flags, err := s.Flags.FlagsOf(ctx, account)
	if err != nil {
		return false, err
	}
	if !flags.TreasuryBox && balance >= s.MinHolderBalance && account != s.FundingAccount {
		return true, nil
	}
	if flags.Destination != "" {
		destFlags, err := s.Flags.FlagsOf(ctx, flags.Destination)
		if err != nil {
			return false, err
		}
		if destFlags.Exchanger {
			return true, nil
		}
	}
	return flags.Exchanger, nil
}

// Run distributes poolAmount pro-rata over eligible holders. Pass one
// fixes eligibleTotal from a balance snapshot; pass two transfers each
// holder's floor share out of the funding account. Rounding dust stays
// with the funding account. A funding shortfall mid-pass aborts the run
// and leaves earlier transfers applied. Cost is linear in the holder
// registry, which is scanned in full on every run.
func (s Service) Run(ctx context.Context, caller string, poolAmount uint64) (entities.AirdropRun, error) {
	logger := ResolveLogger(s.Logger)
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return entities.AirdropRun{}, err
	}

	runID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.AirdropRun{}, err
	}
	startedAt := s.now()

	holders, err := s.Ledger.Holders(ctx)
	if err != nil {
		return entities.AirdropRun{}, err
	}

	// Pass one: snapshot balances, resolve recipients, fix the total.
	var eligibleTotal uint64
	slots := make([]shareSlot, 0, len(holders))
	for _, holder := range holders {
		balance, err := s.Ledger.BalanceOf(ctx, holder)
		if err != nil {
			return entities.AirdropRun{}, err
		}
		eligible, err := s.Eligible(ctx, holder, balance)
		if err != nil {
			return entities.AirdropRun{}, err
		}
		if !eligible {
			continue
		}
		recipient, err := s.resolveRecipient(ctx, holder)
		if err != nil {
			return entities.AirdropRun{}, err
		}
		eligibleTotal, err = safemath.Add(eligibleTotal, balance)
		if err != nil {
			return entities.AirdropRun{}, err
		}
		slots = append(slots, shareSlot{Holder: holder, Balance: balance, Recipient: recipient})
	}
	if eligibleTotal == 0 {
		return entities.AirdropRun{}, domainerrors.ErrEmptyPool
	}

	run := entities.AirdropRun{
		RunID:          runID,
		FundingAccount: s.FundingAccount,
		PoolAmount:     poolAmount,
		EligibleTotal:  eligibleTotal,
		Status:         entities.RunStatusCompleted,
		StartedAt:      startedAt,
	}

	// Pass two: move each floor share. The funding balance is re-read
	// per iteration; a shortfall fails the run at that point with all
	// earlier shares already applied.
	for _, slot := range slots {
		product, err := safemath.Mul(poolAmount, slot.Balance)
		if err != nil {
			return s.failRun(ctx, run, err)
		}
		share, err := safemath.Div(product, eligibleTotal)
		if err != nil {
			return s.failRun(ctx, run, err)
		}
		fundingBalance, err := s.Ledger.BalanceOf(ctx, s.FundingAccount)
		if err != nil {
			return s.failRun(ctx, run, err)
		}
		if share > fundingBalance {
			return s.failRun(ctx, run, domainerrors.ErrInsufficientFunding)
		}
		if err := s.Ledger.Transfer(ctx, s.FundingAccount, slot.Recipient, share); err != nil {
			return s.failRun(ctx, run, err)
		}
		run.TransferCount++
		run.Distributed += share
		s.emit(ctx, events.TypeAirdrop, slot.Holder, map[string]any{
			"run_id":    runID,
			"holder":    slot.Holder,
			"recipient": slot.Recipient,
			"value":     share,
		})
	}

	run.FinishedAt = s.now()
	if err := s.Runs.SaveRun(ctx, run); err != nil {
		return entities.AirdropRun{}, err
	}
	logger.Info("airdrop run completed",
		"event", "airdrop_run_completed",
		"module", "distribution/airdrop-service",
		"layer", "application",
		"run_id", runID,
		"pool_amount", poolAmount,
		"eligible_total", eligibleTotal,
		"transfer_count", run.TransferCount,
		"distributed", run.Distributed,
	)
	return run, nil
}

func (s Service) failRun(ctx context.Context, run entities.AirdropRun, cause error) (entities.AirdropRun, error) {
	run.Status = entities.RunStatusFailed
	run.FailureReason = cause.Error()
	run.FinishedAt = s.now()
	if saveErr := s.Runs.SaveRun(ctx, run); saveErr != nil {
		ResolveLogger(s.Logger).Error("airdrop failed-run save failed",
			"event", "airdrop_failed_run_save_failed",
			"module", "distribution/airdrop-service",
			"layer", "application",
			"run_id", run.RunID,
			"error", saveErr.Error(),
		)
	}
	ResolveLogger(s.Logger).Error("airdrop run aborted",
		"event", "airdrop_run_aborted",
		"module", "distribution/airdrop-service",
		"layer", "application",
		"run_id", run.RunID,
		"transfers_applied", run.TransferCount,
		"error", cause.Error(),
	)
	return entities.AirdropRun{}, cause
}

// resolveRecipient routes a share to the redirect destination when the
// holder or the destination carries the exchanger flag; the destination
// wins whenever it is present and flagged.
func (s Service) resolveRecipient(ctx context.Context, holder string) (string, error) {
	flags, err := s.Flags.FlagsOf(ctx, holder)
	if err != nil {
		return "", err
	}
	if flags.Destination == "" {
		return holder, nil
	}
	destFlags, err := s.Flags.FlagsOf(ctx, flags.Destination)
	if err != nil {
		return "", err
	}
	if destFlags.Exchanger || flags.Exchanger {
		return flags.Destination, nil
	}
	return holder, nil
}

func (s Service) SetExchanger(ctx context.Context, caller string, account string, flag bool) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	if err := s.Flags.SetExchanger(ctx, account, flag); err != nil {
		return err
	}
	s.emit(ctx, events.TypeSetExchanger, account, map[string]any{
		"account": account,
		"flag":    flag,
	})
	return nil
}

func (s Service) SetDestination(ctx context.Context, caller string, account string, destination string) error {
	account = strings.TrimSpace(account)
	destination = strings.TrimSpace(destination)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	if err := s.Flags.SetDestination(ctx, account, destination); err != nil {
		return err
	}
	s.emit(ctx, events.TypeSetDestination, account, map[string]any{
		"account":     account,
		"destination": destination,
	})
	return nil
}

func (s Service) SetTreasuryBox(ctx context.Context, caller string, account string, flag bool) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	return s.Flags.SetTreasuryBox(ctx, account, flag)
}

// MarkTreasuryBox is the in-process path used by the vesting context when
// it creates a box account. Callers are trusted; the HTTP surface goes
// through SetTreasuryBox instead.
func (s Service) MarkTreasuryBox(ctx context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	return s.Flags.SetTreasuryBox(ctx, account, true)
}

func (s Service) FlagsOf(ctx context.Context, account string) (entities.AccountFlags, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return entities.AccountFlags{}, domainerrors.ErrInvalidAccount
	}
	return s.Flags.FlagsOf(ctx, account)
}

func (s Service) GetRun(ctx context.Context, runID string) (entities.AirdropRun, error) {
	return s.Runs.GetRun(ctx, strings.TrimSpace(runID))
}

func (s Service) ListRuns(ctx context.Context, limit int) ([]entities.AirdropRun, error) {
	return s.Runs.ListRuns(ctx, limit)
}

func (s Service) requireAuthorized(ctx context.Context, caller string) error {
	if s.Access == nil {
		return domainerrors.ErrAccessDenied
	}
	ok, err := s.Access.IsAuthorized(ctx, strings.TrimSpace(caller))
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}

func (s Service) emit(ctx context.Context, eventType string, partitionKey string, payload map[string]any) {
	if s.Outbox == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("airdrop outbox id generation failed",
			"event", "airdrop_outbox_id_failed",
			"module", "distribution/airdrop-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("airdrop outbox payload marshal failed",
			"event", "airdrop_outbox_marshal_failed",
			"module", "distribution/airdrop-service",
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
		logger.Error("airdrop outbox append failed",
			"event", "airdrop_outbox_append_failed",
			"module", "distribution/airdrop-service",
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
