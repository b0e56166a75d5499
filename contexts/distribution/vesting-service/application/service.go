package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"karat/contexts/distribution/vesting-service/domain/entities"
	domainerrors "karat/contexts/distribution/vesting-service/domain/errors"
	"karat/contexts/distribution/vesting-service/ports"
	"karat/internal/shared/events"
	"karat/internal/shared/safemath"
)

const sourceService = "vesting-service"

// Grant legs floor to these percentages of the total. Their sum leaves
// up to two units of dust with the funding account; the pool is debited
// by the full total regardless.
const (
	immediatePercent = 33
	box1Percent      = 33
	box2Percent      = 34
)

type Service struct {
	Boxes    ports.BoxRepository
	Founders ports.FounderRegistry
	Pool     ports.PoolRepository
	Grants   ports.GrantRepository
	Ledger   ports.TokenLedger
	Marker   ports.TreasuryMarker
	Outbox   ports.OutboxWriter
	Access   ports.AccessControl
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger

	// FundingAccount sources every grant leg; SpenderAccount is the
	// orchestrator's identity on the ledger allowance. Maturity1 and
	// Maturity2 are the release times of the two grant boxes.
	FundingAccount string
	SpenderAccount string
	Maturity1      time.Time
	Maturity2      time.Time
}

// Claim releases a matured box: the box account's entire current
// balance moves to the beneficiary. Callable by anyone.
func (s Service) Claim(ctx context.Context, boxID string) (uint64, error) {
	box, err := s.Boxes.GetBox(ctx, strings.TrimSpace(boxID))
	if err != nil {
		return 0, err
	}
	if !box.IsAvailable(s.now()) {
		return 0, domainerrors.ErrNotMatured
	}
	balance, err := s.Ledger.BalanceOf(ctx, box.BoxAccount)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, domainerrors.ErrNothingToClaim
	}
	if err := s.Ledger.Transfer(ctx, box.BoxAccount, box.Beneficiary, balance); err != nil {
		return 0, err
	}
	s.emit(ctx, events.TypeVestingClaimed, box.Beneficiary, map[string]any{
		"box_id":      box.BoxID,
		"beneficiary": box.Beneficiary,
		"value":       balance,
	})
	ResolveLogger(s.Logger).Info("vesting box claimed",
		"event", "vesting_box_claimed",
		"module", "distribution/vesting-service",
		"layer", "application",
		"box_id", box.BoxID,
		"beneficiary", box.Beneficiary,
		"value", balance,
	)
	return balance, nil
}

// IsAvailable reports maturity without touching balances.
func (s Service) IsAvailable(ctx context.Context, boxID string) (bool, error) {
	box, err := s.Boxes.GetBox(ctx, strings.TrimSpace(boxID))
	if err != nil {
		return false, err
	}
	return box.IsAvailable(s.now()), nil
}

// GrantToFounder hands totalValue to a registered founder as three
// legs: an immediate transfer plus two vesting boxes at the configured
// maturities. The pool is debited by the full totalValue; a failed leg
// unwinds the earlier ones.
func (s Service) GrantToFounder(ctx context.Context, caller string, founder string, totalValue uint64) (entities.GrantRecord, error) {
	logger := ResolveLogger(s.Logger)
	founder = strings.TrimSpace(founder)
	if founder == "" {
		return entities.GrantRecord{}, domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return entities.GrantRecord{}, err
	}
	registered, err := s.Founders.IsFounder(ctx, founder)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	if !registered {
		return entities.GrantRecord{}, domainerrors.ErrAccessDenied
	}

	pool, err := s.Pool.Pool(ctx)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	if totalValue < pool.MinTx || totalValue > pool.Remaining {
		return entities.GrantRecord{}, domainerrors.ErrOutOfRange
	}

	immediate, err := s.legFor(totalValue, immediatePercent)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	box1Value, err := s.legFor(totalValue, box1Percent)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	box2Value, err := s.legFor(totalValue, box2Percent)
	if err != nil {
		return entities.GrantRecord{}, err
	}

	grantID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	now := s.now()
	box1, err := s.newBox(ctx, founder, s.Maturity1, now)
	if err != nil {
		return entities.GrantRecord{}, err
	}
	box2, err := s.newBox(ctx, founder, s.Maturity2, now)
	if err != nil {
		return entities.GrantRecord{}, err
	}

	if err := s.Pool.DebitPool(ctx, totalValue); err != nil {
		return entities.GrantRecord{}, err
	}
	if err := s.Ledger.TransferFrom(ctx, s.SpenderAccount, s.FundingAccount, founder, immediate); err != nil {
		s.creditPool(ctx, totalValue)
		return entities.GrantRecord{}, err
	}
	if err := s.Ledger.TransferFrom(ctx, s.SpenderAccount, s.FundingAccount, box1.BoxAccount, box1Value); err != nil {
		s.unwind(ctx, totalValue, map[string]uint64{founder: immediate})
		return entities.GrantRecord{}, err
	}
	if err := s.Ledger.TransferFrom(ctx, s.SpenderAccount, s.FundingAccount, box2.BoxAccount, box2Value); err != nil {
		s.unwind(ctx, totalValue, map[string]uint64{founder: immediate, box1.BoxAccount: box1Value})
		return entities.GrantRecord{}, err
	}

	legs := map[string]uint64{
		founder:         immediate,
		box1.BoxAccount: box1Value,
		box2.BoxAccount: box2Value,
	}
	if err := s.Boxes.SaveBox(ctx, box1); err != nil {
		s.unwind(ctx, totalValue, legs)
		return entities.GrantRecord{}, err
	}
	if err := s.Boxes.SaveBox(ctx, box2); err != nil {
		s.unwind(ctx, totalValue, legs)
		return entities.GrantRecord{}, err
	}
	grant := entities.GrantRecord{
		GrantID:    grantID,
		Founder:    founder,
		TotalValue: totalValue,
		Immediate:  immediate,
		Box1ID:     box1.BoxID,
		Box1Value:  box1Value,
		Box2ID:     box2.BoxID,
		Box2Value:  box2Value,
		OccurredAt: now,
	}
	if err := s.Grants.SaveGrant(ctx, grant); err != nil {
		s.unwind(ctx, totalValue, legs)
		return entities.GrantRecord{}, err
	}
	s.emit(ctx, events.TypeFounderGrant, founder, map[string]any{
		"grant_id":  grantID,
		"recipient": founder,
		"value":     totalValue,
		"box1":      box1.BoxID,
		"box2":      box2.BoxID,
	})
	logger.Info("founder grant issued",
		"event", "vesting_founder_grant_issued",
		"module", "distribution/vesting-service",
		"layer", "application",
		"grant_id", grantID,
		"founder", founder,
		"total_value", totalValue,
		"immediate", immediate,
		"box1_value", box1Value,
		"box2_value", box2Value,
	)
	return grant, nil
}

// RegisterFounder adds an account to the pre-registered founder set.
// Owner only.
func (s Service) RegisterFounder(ctx context.Context, caller string, founder string) error {
	founder = strings.TrimSpace(founder)
	if founder == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.Founders.AddFounder(ctx, founder); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("founder registered",
		"event", "vesting_founder_registered",
		"module", "distribution/vesting-service",
		"layer", "application",
		"founder", founder,
	)
	return nil
}

func (s Service) GetBox(ctx context.Context, boxID string) (entities.VestingBox, error) {
	return s.Boxes.GetBox(ctx, strings.TrimSpace(boxID))
}

func (s Service) ListBoxesByBeneficiary(ctx context.Context, beneficiary string) ([]entities.VestingBox, error) {
	beneficiary = strings.TrimSpace(beneficiary)
	if beneficiary == "" {
		return nil, domainerrors.ErrInvalidAccount
	}
	return s.Boxes.ListBoxesByBeneficiary(ctx, beneficiary)
}

func (s Service) GetGrant(ctx context.Context, grantID string) (entities.GrantRecord, error) {
	return s.Grants.GetGrant(ctx, strings.TrimSpace(grantID))
}

func (s Service) ListGrants(ctx context.Context, limit int) ([]entities.GrantRecord, error) {
	return s.Grants.ListGrants(ctx, limit)
}

func (s Service) GrantPool(ctx context.Context) (entities.GrantPool, error) {
	return s.Pool.Pool(ctx)
}

// newBox mints a box identity and flags its account as a treasury box
// before any value lands on it.
func (s Service) newBox(ctx context.Context, beneficiary string, releaseTime time.Time, createdAt time.Time) (entities.VestingBox, error) {
	boxID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.VestingBox{}, err
	}
	box := entities.VestingBox{
		BoxID:       boxID,
		BoxAccount:  "vesting-box:" + boxID,
		Beneficiary: beneficiary,
		ReleaseTime: releaseTime.UTC(),
		CreatedAt:   createdAt,
	}
	if s.Marker != nil {
		if err := s.Marker.MarkTreasuryBox(ctx, box.BoxAccount); err != nil {
			return entities.VestingBox{}, err
		}
	}
	return box, nil
}

func (s Service) legFor(totalValue uint64, percent uint64) (uint64, error) {
	product, err := safemath.Mul(totalValue, percent)
	if err != nil {
		return 0, err
	}
	return safemath.Div(product, 100)
}

// unwind returns already-moved legs to the funding account and restores
// the pool after a failed grant.
func (s Service) unwind(ctx context.Context, totalValue uint64, moved map[string]uint64) {
	logger := ResolveLogger(s.Logger)
	s.creditPool(ctx, totalValue)
	for account, value := range moved {
		if err := s.Ledger.Transfer(ctx, account, s.FundingAccount, value); err != nil {
			logger.Error("grant unwind transfer failed",
				"event", "vesting_grant_unwind_failed",
				"module", "distribution/vesting-service",
				"layer", "application",
				"account", account,
				"value", value,
				"error", err.Error(),
			)
		}
	}
}

func (s Service) creditPool(ctx context.Context, totalValue uint64) {
	if err := s.Pool.CreditPool(ctx, totalValue); err != nil {
		ResolveLogger(s.Logger).Error("grant pool restore failed",
			"event", "vesting_pool_restore_failed",
			"module", "distribution/vesting-service",
			"layer", "application",
			"value", totalValue,
			"error", err.Error(),
		)
	}
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

func (s Service) emit(ctx context.Context, eventType string, partitionKey string, payload map[string]any) {
	if s.Outbox == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("vesting outbox id generation failed",
			"event", "vesting_outbox_id_failed",
			"module", "distribution/vesting-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("vesting outbox payload marshal failed",
			"event", "vesting_outbox_marshal_failed",
			"module", "distribution/vesting-service",
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
		logger.Error("vesting outbox append failed",
			"event", "vesting_outbox_append_failed",
			"module", "distribution/vesting-service",
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
