package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"karat/contexts/distribution/sale-window-service/domain/entities"
	domainerrors "karat/contexts/distribution/sale-window-service/domain/errors"
	"karat/contexts/distribution/sale-window-service/ports"
	"karat/internal/shared/events"
	"karat/internal/shared/safemath"
)

const sourceService = "sale-window-service"

type Service struct {
	Window   ports.WindowRepository
	Sales    ports.SaleRepository
	Ledger   ports.TokenLedger
	Buyers   ports.Whitelist
	Rates    ports.RateSource
	Payments ports.PaymentGateway
	Outbox   ports.OutboxWriter
	Access   ports.AccessControl
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger

	// FundingAccount holds the tokens being sold; SpenderAccount is the
	// window's identity on the ledger allowance; Beneficiary receives
	// the forwarded payment. RateUnit is the payment-unit divisor of the
	// rate quote.
	FundingAccount string
	SpenderAccount string
	Beneficiary    string
	RateUnit       uint64
}

// Purchase converts paymentValue to tokens at the current rate and moves
// them from the funding account to the buyer. Checks run in a fixed
// order before any effect; the payment forward to the beneficiary is the
// last step, and a forward failure unwinds the cap decrement, the token
// transfer and the consumed allowance before reporting the error.
func (s Service) Purchase(ctx context.Context, buyer string, paymentValue uint64) (entities.SaleRecord, error) {
	logger := ResolveLogger(s.Logger)
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return entities.SaleRecord{}, domainerrors.ErrInvalidAccount
	}

	window, err := s.Window.Window(ctx)
	if err != nil {
		return entities.SaleRecord{}, err
	}
	if window.Phase(s.now()) != entities.PhaseOpen {
		return entities.SaleRecord{}, domainerrors.ErrAccessDenied
	}

	listed, err := s.Buyers.IsWhitelisted(ctx, buyer)
	if err != nil {
		return entities.SaleRecord{}, err
	}
	if !listed {
		return entities.SaleRecord{}, domainerrors.ErrNotWhitelisted
	}

	if paymentValue < window.MinTx || paymentValue > window.MaxTx {
		return entities.SaleRecord{}, domainerrors.ErrOutOfRange
	}

	// The rate is quoted per call so an oracle update applies to the
	// very next purchase.
	rate, err := s.Rates.CurrentRate(ctx)
	if err != nil {
		return entities.SaleRecord{}, err
	}
	if rate == 0 {
		return entities.SaleRecord{}, domainerrors.ErrZeroRate
	}
	tokens, err := s.tokensFor(rate, paymentValue)
	if err != nil {
		return entities.SaleRecord{}, err
	}
	if tokens > window.Remaining {
		return entities.SaleRecord{}, domainerrors.ErrCapExceeded
	}

	saleID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.SaleRecord{}, err
	}

	if err := s.Payments.Collect(ctx, buyer, paymentValue); err != nil {
		return entities.SaleRecord{}, err
	}
	if err := s.Window.DebitRemaining(ctx, tokens); err != nil {
		s.refund(ctx, buyer, paymentValue)
		return entities.SaleRecord{}, err
	}
	if err := s.Ledger.TransferFrom(ctx, s.SpenderAccount, s.FundingAccount, buyer, tokens); err != nil {
		s.creditRemaining(ctx, tokens)
		s.refund(ctx, buyer, paymentValue)
		return entities.SaleRecord{}, err
	}

	// Interaction last: all window and ledger state is already updated
	// when the beneficiary is paid, so a synchronous re-entry from the
	// gateway observes consistent state.
	if err := s.Payments.Forward(ctx, s.Beneficiary, paymentValue); err != nil {
		s.compensate(ctx, buyer, paymentValue, tokens, err)
		return entities.SaleRecord{}, domainerrors.ErrPaymentForwardFailed
	}

	sale := entities.SaleRecord{
		SaleID:       saleID,
		Buyer:        buyer,
		PaymentValue: paymentValue,
		Tokens:       tokens,
		Rate:         rate,
		OccurredAt:   s.now(),
	}
	if err := s.Sales.SaveSale(ctx, sale); err != nil {
		// The forward already happened, so the refund leg of the
		// compensation is best-effort against the transport.
		s.compensate(ctx, buyer, paymentValue, tokens, err)
		return entities.SaleRecord{}, err
	}
	s.emit(ctx, events.TypeTokenSold, buyer, map[string]any{
		"sale_id":       saleID,
		"recipient":     buyer,
		"payment_value": paymentValue,
		"tokens":        tokens,
		"rate":          rate,
	})
	logger.Info("token sale accepted",
		"event", "sale_purchase_accepted",
		"module", "distribution/sale-window-service",
		"layer", "application",
		"sale_id", saleID,
		"buyer", buyer,
		"payment_value", paymentValue,
		"tokens", tokens,
		"rate", rate,
	)
	return sale, nil
}

// IncreaseHardCap raises both the cap and the remaining counter. Owner
// only.
func (s Service) IncreaseHardCap(ctx context.Context, caller string, amount uint64) (entities.WindowState, error) {
	if err := s.requireOwner(ctx, caller); err != nil {
		return entities.WindowState{}, err
	}
	window, err := s.Window.IncreaseCap(ctx, amount)
	if err != nil {
		return entities.WindowState{}, err
	}
	s.emit(ctx, events.TypeCapIncreased, strings.TrimSpace(caller), map[string]any{
		"amount":    amount,
		"hard_cap":  window.HardCap,
		"remaining": window.Remaining,
	})
	ResolveLogger(s.Logger).Info("hard cap increased",
		"event", "sale_cap_increased",
		"module", "distribution/sale-window-service",
		"layer", "application",
		"amount", amount,
		"hard_cap", window.HardCap,
		"remaining", window.Remaining,
	)
	return window, nil
}

func (s Service) Status(ctx context.Context) (entities.WindowStatus, error) {
	window, err := s.Window.Window(ctx)
	if err != nil {
		return entities.WindowStatus{}, err
	}
	summary, err := s.Sales.SummarizeSales(ctx)
	if err != nil {
		return entities.WindowStatus{}, err
	}
	now := s.now()
	return entities.WindowStatus{
		Phase: window.Phase(now),
		State: window,
		Sales: summary,
		AsOf:  now,
	}, nil
}

func (s Service) GetSale(ctx context.Context, saleID string) (entities.SaleRecord, error) {
	return s.Sales.GetSale(ctx, strings.TrimSpace(saleID))
}

func (s Service) ListSales(ctx context.Context, limit int) ([]entities.SaleRecord, error) {
	return s.Sales.ListSales(ctx, limit)
}

func (s Service) tokensFor(rate uint64, paymentValue uint64) (uint64, error) {
	unit := s.RateUnit
	if unit == 0 {
		unit = 1
	}
	product, err := safemath.Mul(rate, paymentValue)
	if err != nil {
		return 0, err
	}
	return safemath.Div(product, unit)
}

// compensate unwinds a purchase that failed after its ledger effects:
// the cap decrement is restored, the tokens go back to the funding
// account, the consumed allowance is re-credited and the collected
// payment returns to the buyer.
func (s Service) compensate(ctx context.Context, buyer string, paymentValue uint64, tokens uint64, cause error) {
	logger := ResolveLogger(s.Logger)
	s.creditRemaining(ctx, tokens)
	if err := s.Ledger.Transfer(ctx, buyer, s.FundingAccount, tokens); err != nil {
		logger.Error("sale compensation token return failed",
			"event", "sale_compensation_transfer_failed",
			"module", "distribution/sale-window-service",
			"layer", "application",
			"buyer", buyer,
			"tokens", tokens,
			"error", err.Error(),
		)
	}
	if _, err := s.Ledger.IncreaseApproval(ctx, s.FundingAccount, s.SpenderAccount, tokens); err != nil {
		logger.Error("sale compensation allowance restore failed",
			"event", "sale_compensation_approval_failed",
			"module", "distribution/sale-window-service",
			"layer", "application",
			"tokens", tokens,
			"error", err.Error(),
		)
	}
	s.refund(ctx, buyer, paymentValue)
	logger.Error("sale purchase rolled back",
		"event", "sale_purchase_rolled_back",
		"module", "distribution/sale-window-service",
		"layer", "application",
		"buyer", buyer,
		"payment_value", paymentValue,
		"tokens", tokens,
		"error", cause.Error(),
	)
}

func (s Service) creditRemaining(ctx context.Context, tokens uint64) {
	if err := s.Window.CreditRemaining(ctx, tokens); err != nil {
		ResolveLogger(s.Logger).Error("sale remaining restore failed",
			"event", "sale_remaining_restore_failed",
			"module", "distribution/sale-window-service",
			"layer", "application",
			"tokens", tokens,
			"error", err.Error(),
		)
	}
}

func (s Service) refund(ctx context.Context, payer string, value uint64) {
	if err := s.Payments.Refund(ctx, payer, value); err != nil {
		ResolveLogger(s.Logger).Error("sale payment refund failed",
			"event", "sale_payment_refund_failed",
			"module", "distribution/sale-window-service",
			"layer", "application",
			"payer", payer,
			"value", value,
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
		logger.Error("sale outbox id generation failed",
			"event", "sale_outbox_id_failed",
			"module", "distribution/sale-window-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sale outbox payload marshal failed",
			"event", "sale_outbox_marshal_failed",
			"module", "distribution/sale-window-service",
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
		logger.Error("sale outbox append failed",
			"event", "sale_outbox_append_failed",
			"module", "distribution/sale-window-service",
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
