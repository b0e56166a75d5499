package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"karat/contexts/distribution/airdrop-service/domain/entities"
	domainerrors "karat/contexts/distribution/airdrop-service/domain/errors"
	"karat/contexts/distribution/airdrop-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Store struct {
	mu sync.RWMutex

	flags  map[string]entities.AccountFlags
	runs   map[string]entities.AirdropRun
	outbox map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		flags:  make(map[string]entities.AccountFlags),
		runs:   make(map[string]entities.AirdropRun),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) FlagsOf(_ context.Context, account string) (entities.AccountFlags, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account = strings.TrimSpace(account)
	flags, ok := s.flags[account]
	if !ok {
		return entities.AccountFlags{Account: account}, nil
	}
	return flags, nil
}

func (s *Store) SetTreasuryBox(_ context.Context, account string, flag bool) error {
	return s.updateFlags(account, func(flags *entities.AccountFlags) {
		flags.TreasuryBox = flag
	})
}

func (s *Store) SetExchanger(_ context.Context, account string, flag bool) error {
	return s.updateFlags(account, func(flags *entities.AccountFlags) {
		flags.Exchanger = flag
	})
}

func (s *Store) SetDestination(_ context.Context, account string, destination string) error {
	return s.updateFlags(account, func(flags *entities.AccountFlags) {
		flags.Destination = strings.TrimSpace(destination)
	})
}

func (s *Store) updateFlags(account string, mutate func(*entities.AccountFlags)) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flags, ok := s.flags[account]
	if !ok {
		flags = entities.AccountFlags{Account: account}
	}
	mutate(&flags)
	s.flags[account] = flags
	return nil
}

func (s *Store) SaveRun(_ context.Context, run entities.AirdropRun) error {
	if strings.TrimSpace(run.RunID) == "" {
		return domainerrors.ErrRunNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
	return nil
}

func (s *Store) GetRun(_ context.Context, runID string) (entities.AirdropRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[strings.TrimSpace(runID)]
	if !ok {
		return entities.AirdropRun{}, domainerrors.ErrRunNotFound
	}
	return run, nil
}

func (s *Store) ListRuns(_ context.Context, limit int) ([]entities.AirdropRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.AirdropRun, 0, len(s.runs))
	for _, run := range s.runs {
		items = append(items, run)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return domainerrors.ErrRunNotFound
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
		return domainerrors.ErrRunNotFound
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

var _ ports.FlagRepository = (*Store)(nil)
var _ ports.RunRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
