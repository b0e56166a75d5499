package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "karat/contexts/identity-access/access-control/domain/errors"
	"karat/contexts/identity-access/access-control/ports"
)

type Service struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (s Service) IsOwner(ctx context.Context, account string) (bool, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return false, nil
	}
	owner, err := s.Repo.Owner(ctx)
	if err != nil {
		return false, err
	}
	return account == owner, nil
}

// IsAuthorized reports membership of the authorized set. The owner is
// always authorized.
func (s Service) IsAuthorized(ctx context.Context, account string) (bool, error) {
	isOwner, err := s.IsOwner(ctx, account)
	if err != nil {
		return false, err
	}
	if isOwner {
		return true, nil
	}
	return s.Repo.IsAuthorized(ctx, strings.TrimSpace(account))
}

func (s Service) IsWhitelisted(ctx context.Context, account string) (bool, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return false, nil
	}
	return s.Repo.IsWhitelisted(ctx, account)
}

// GrantAuthorization adds an account to the authorized set. Owner only.
func (s Service) GrantAuthorization(ctx context.Context, caller string, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.Repo.AddAuthorized(ctx, account); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("authorization granted",
		"event", "access_authorization_granted",
		"module", "identity-access/access-control",
		"layer", "application",
		"account", account,
		"granted_by", strings.TrimSpace(caller),
	)
	return nil
}

func (s Service) RevokeAuthorization(ctx context.Context, caller string, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.Repo.RemoveAuthorized(ctx, account); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("authorization revoked",
		"event", "access_authorization_revoked",
		"module", "identity-access/access-control",
		"layer", "application",
		"account", account,
		"revoked_by", strings.TrimSpace(caller),
	)
	return nil
}

// AddToWhitelist admits an account to the sale whitelist. Any authorized
// account may maintain the whitelist.
func (s Service) AddToWhitelist(ctx context.Context, caller string, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	return s.Repo.AddWhitelisted(ctx, account)
}

func (s Service) RemoveFromWhitelist(ctx context.Context, caller string, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireAuthorized(ctx, caller); err != nil {
		return err
	}
	return s.Repo.RemoveWhitelisted(ctx, account)
}

func (s Service) requireOwner(ctx context.Context, caller string) error {
	ok, err := s.IsOwner(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}

func (s Service) requireAuthorized(ctx context.Context, caller string) error {
	ok, err := s.IsAuthorized(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}
