package memory

import (
	"context"
	"strings"
	"sync"

	domainerrors "karat/contexts/identity-access/access-control/domain/errors"
	"karat/contexts/identity-access/access-control/ports"
)

type Store struct {
	mu sync.RWMutex

	owner       string
	authorized  map[string]bool
	whitelisted map[string]bool
}

func NewStore(owner string) *Store {
	return &Store{
		owner:       strings.TrimSpace(owner),
		authorized:  make(map[string]bool),
		whitelisted: make(map[string]bool),
	}
}

func (s *Store) Owner(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner, nil
}

func (s *Store) IsAuthorized(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized[strings.TrimSpace(account)], nil
}

func (s *Store) AddAuthorized(_ context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorized[account] = true
	return nil
}

func (s *Store) RemoveAuthorized(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.authorized, strings.TrimSpace(account))
	return nil
}

func (s *Store) IsWhitelisted(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelisted[strings.TrimSpace(account)], nil
}

func (s *Store) AddWhitelisted(_ context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whitelisted[account] = true
	return nil
}

func (s *Store) RemoveWhitelisted(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.whitelisted, strings.TrimSpace(account))
	return nil
}

var _ ports.Repository = (*Store)(nil)
