package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/contexts/ledger-core/token-ledger/ports"
	"karat/internal/shared/safemath"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store is the authoritative in-memory book: balances, allowances, total
// supply and the holder registry, plus the event outbox. One mutex guards
// the whole state so every compound mutation is atomic.
type Store struct {
	mu sync.RWMutex

	balances    map[string]uint64
	allowances  map[string]map[string]uint64
	totalSupply uint64

	holderSeen  map[string]bool
	holderOrder []string

	outbox map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
		holderSeen: make(map[string]bool),
		outbox:     make(map[string]outboxRecord),
	}
}

// Seed installs the initial supply on the owner account and registers the
// owner as the first holder. Callable once, before any other mutation.
func (s *Store) Seed(owner string, supply uint64) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalSupply != 0 || len(s.holderOrder) != 0 {
		return domainerrors.ErrSupplyAlreadySeeded
	}
	s.balances[owner] = supply
	s.totalSupply = supply
	if supply > 0 {
		s.recordHolder(owner)
	}
	return nil
}

func (s *Store) Transfer(_ context.Context, from string, to string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(from, to, value)
}

func (s *Store) TransferFrom(_ context.Context, spender string, from string, to string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowance := s.allowanceLocked(from, spender)
	if value > allowance {
		return domainerrors.ErrInsufficientAllowance
	}
	if err := s.move(from, to, value); err != nil {
		return err
	}
	// Cannot underflow after the allowance check above.
	remaining, err := safemath.Sub(allowance, value)
	if err != nil {
		return err
	}
	s.setAllowanceLocked(from, spender, remaining)
	return nil
}

func (s *Store) SetAllowance(_ context.Context, owner string, spender string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAllowanceLocked(owner, spender, value)
	return nil
}

func (s *Store) AdjustAllowance(_ context.Context, owner string, spender string, delta uint64, increase bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.allowanceLocked(owner, spender)
	if increase {
		next, err := safemath.Add(current, delta)
		if err != nil {
			return 0, err
		}
		s.setAllowanceLocked(owner, spender, next)
		return next, nil
	}

	// Decrease saturates at zero rather than failing.
	next := uint64(0)
	if delta <= current {
		var err error
		next, err = safemath.Sub(current, delta)
		if err != nil {
			return 0, err
		}
	}
	s.setAllowanceLocked(owner, spender, next)
	return next, nil
}

func (s *Store) Mint(_ context.Context, to string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	supply, err := safemath.Add(s.totalSupply, value)
	if err != nil {
		return err
	}
	balance, err := safemath.Add(s.balances[to], value)
	if err != nil {
		return err
	}
	s.totalSupply = supply
	s.balances[to] = balance
	if value > 0 {
		s.recordHolder(to)
	}
	return nil
}

func (s *Store) Burn(_ context.Context, from string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value > s.balances[from] {
		return domainerrors.ErrInsufficientBalance
	}
	balance, err := safemath.Sub(s.balances[from], value)
	if err != nil {
		return err
	}
	supply, err := safemath.Sub(s.totalSupply, value)
	if err != nil {
		return err
	}
	s.balances[from] = balance
	s.totalSupply = supply
	return nil
}

func (s *Store) BalanceOf(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[strings.TrimSpace(account)], nil
}

func (s *Store) AllowanceOf(_ context.Context, owner string, spender string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowanceLocked(strings.TrimSpace(owner), strings.TrimSpace(spender)), nil
}

func (s *Store) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSupply, nil
}

func (s *Store) Holders(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.holderOrder...), nil
}

// move debits from and credits to. Both sides are validated before either
// map is touched, so a failed move leaves the book unchanged.
func (s *Store) move(from string, to string, value uint64) error {
	fromBalance := s.balances[from]
	if value > fromBalance {
		return domainerrors.ErrInsufficientBalance
	}
	// A self-move is a no-op on the balance. Resolving both sides through
	// the map would credit from the pre-debit balance.
	if from == to {
		if value > 0 {
			s.recordHolder(to)
		}
		return nil
	}
	nextFrom, err := safemath.Sub(fromBalance, value)
	if err != nil {
		return err
	}
	nextTo, err := safemath.Add(s.balances[to], value)
	if err != nil {
		return err
	}
	s.balances[from] = nextFrom
	s.balances[to] = nextTo
	if value > 0 {
		s.recordHolder(to)
	}
	return nil
}

func (s *Store) recordHolder(account string) {
	if s.holderSeen[account] {
		return
	}
	s.holderSeen[account] = true
	s.holderOrder = append(s.holderOrder, account)
}

func (s *Store) allowanceLocked(owner string, spender string) uint64 {
	row, ok := s.allowances[owner]
	if !ok {
		return 0
	}
	return row[spender]
}

func (s *Store) setAllowanceLocked(owner string, spender string, value uint64) {
	row, ok := s.allowances[owner]
	if !ok {
		row = make(map[string]uint64)
		s.allowances[owner] = row
	}
	row[spender] = value
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return domainerrors.ErrInvalidLedgerInput
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
		return domainerrors.ErrRecordNotFound
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

var _ ports.Book = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
