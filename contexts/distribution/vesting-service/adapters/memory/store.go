package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"karat/contexts/distribution/vesting-service/domain/entities"
	domainerrors "karat/contexts/distribution/vesting-service/domain/errors"
	"karat/contexts/distribution/vesting-service/ports"
	"karat/internal/shared/safemath"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Store struct {
	mu sync.RWMutex

	pool       entities.GrantPool
	boxes      map[string]entities.VestingBox
	byAccount  map[string][]string
	founders   map[string]struct{}
	grants     map[string]entities.GrantRecord
	grantOrder []string
	outbox     map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore(pool entities.GrantPool) *Store {
	return &Store{
		pool:      pool,
		boxes:     make(map[string]entities.VestingBox),
		byAccount: make(map[string][]string),
		founders:  make(map[string]struct{}),
		grants:    make(map[string]entities.GrantRecord),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) SaveBox(_ context.Context, box entities.VestingBox) error {
	if strings.TrimSpace(box.BoxID) == "" {
		return domainerrors.ErrBoxNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boxes[box.BoxID]; !exists {
		s.byAccount[box.Beneficiary] = append(s.byAccount[box.Beneficiary], box.BoxID)
	}
	s.boxes[box.BoxID] = box
	return nil
}

func (s *Store) GetBox(_ context.Context, boxID string) (entities.VestingBox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	box, ok := s.boxes[strings.TrimSpace(boxID)]
	if !ok {
		return entities.VestingBox{}, domainerrors.ErrBoxNotFound
	}
	return box, nil
}

func (s *Store) ListBoxesByBeneficiary(_ context.Context, beneficiary string) ([]entities.VestingBox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAccount[strings.TrimSpace(beneficiary)]
	items := make([]entities.VestingBox, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.boxes[id])
	}
	return items, nil
}

func (s *Store) IsFounder(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.founders[strings.TrimSpace(account)]
	return ok, nil
}

func (s *Store) AddFounder(_ context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.founders[account] = struct{}{}
	return nil
}

func (s *Store) Pool(_ context.Context) (entities.GrantPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool, nil
}

// DebitPool checks the budget and applies the decrement under one
// critical section.
func (s *Store) DebitPool(_ context.Context, total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if total > s.pool.Remaining {
		return domainerrors.ErrOutOfRange
	}
	remaining, err := safemath.Sub(s.pool.Remaining, total)
	if err != nil {
		return err
	}
	s.pool.Remaining = remaining
	return nil
}

func (s *Store) CreditPool(_ context.Context, total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, err := safemath.Add(s.pool.Remaining, total)
	if err != nil {
		return err
	}
	s.pool.Remaining = remaining
	return nil
}

func (s *Store) SaveGrant(_ context.Context, grant entities.GrantRecord) error {
	if strings.TrimSpace(grant.GrantID) == "" {
		return domainerrors.ErrGrantNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grants[grant.GrantID]; !exists {
		s.grantOrder = append(s.grantOrder, grant.GrantID)
	}
	s.grants[grant.GrantID] = grant
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID string) (entities.GrantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[strings.TrimSpace(grantID)]
	if !ok {
		return entities.GrantRecord{}, domainerrors.ErrGrantNotFound
	}
	return grant, nil
}

// ListGrants returns the newest grants first.
func (s *Store) ListGrants(_ context.Context, limit int) ([]entities.GrantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.GrantRecord, 0, limit)
	for i := len(s.grantOrder) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.grants[s.grantOrder[i]])
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return domainerrors.ErrGrantNotFound
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
		return domainerrors.ErrGrantNotFound
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

var _ ports.BoxRepository = (*Store)(nil)
var _ ports.FounderRegistry = (*Store)(nil)
var _ ports.PoolRepository = (*Store)(nil)
var _ ports.GrantRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
