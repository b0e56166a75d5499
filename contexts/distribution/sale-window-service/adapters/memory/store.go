package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"karat/contexts/distribution/sale-window-service/domain/entities"
	domainerrors "karat/contexts/distribution/sale-window-service/domain/errors"
	"karat/contexts/distribution/sale-window-service/ports"
	"karat/internal/shared/safemath"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Store struct {
	mu sync.RWMutex

	window    entities.WindowState
	sales     map[string]entities.SaleRecord
	saleOrder []string
	summary   entities.SalesSummary
	outbox    map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore(window entities.WindowState) *Store {
	return &Store{
		window: window,
		sales:  make(map[string]entities.SaleRecord),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) Window(_ context.Context) (entities.WindowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window, nil
}

// DebitRemaining checks the cap and applies the decrement under one
// critical section.
func (s *Store) DebitRemaining(_ context.Context, tokens uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tokens > s.window.Remaining {
		return domainerrors.ErrCapExceeded
	}
	remaining, err := safemath.Sub(s.window.Remaining, tokens)
	if err != nil {
		return err
	}
	s.window.Remaining = remaining
	return nil
}

func (s *Store) CreditRemaining(_ context.Context, tokens uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, err := safemath.Add(s.window.Remaining, tokens)
	if err != nil {
		return err
	}
	s.window.Remaining = remaining
	return nil
}

func (s *Store) IncreaseCap(_ context.Context, amount uint64) (entities.WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hardCap, err := safemath.Add(s.window.HardCap, amount)
	if err != nil {
		return entities.WindowState{}, err
	}
	remaining, err := safemath.Add(s.window.Remaining, amount)
	if err != nil {
		return entities.WindowState{}, err
	}
	s.window.HardCap = hardCap
	s.window.Remaining = remaining
	return s.window, nil
}

func (s *Store) SaveSale(_ context.Context, sale entities.SaleRecord) error {
	if strings.TrimSpace(sale.SaleID) == "" {
		return domainerrors.ErrSaleNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[sale.SaleID]; !exists {
		s.saleOrder = append(s.saleOrder, sale.SaleID)
		s.summary.SaleCount++
		s.summary.TokensSold += sale.Tokens
		s.summary.PaymentCollected += sale.PaymentValue
	}
	s.sales[sale.SaleID] = sale
	return nil
}

func (s *Store) GetSale(_ context.Context, saleID string) (entities.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[strings.TrimSpace(saleID)]
	if !ok {
		return entities.SaleRecord{}, domainerrors.ErrSaleNotFound
	}
	return sale, nil
}

// ListSales returns the newest sales first.
func (s *Store) ListSales(_ context.Context, limit int) ([]entities.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.SaleRecord, 0, limit)
	for i := len(s.saleOrder) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.sales[s.saleOrder[i]])
	}
	return items, nil
}

func (s *Store) SummarizeSales(_ context.Context) (entities.SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return domainerrors.ErrSaleNotFound
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox[outboxID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrSaleNotFound
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.WindowRepository = (*Store)(nil)
var _ ports.SaleRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
