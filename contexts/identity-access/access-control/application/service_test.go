package application

import (
	"context"
	"errors"
	"testing"

	"karat/contexts/identity-access/access-control/adapters/memory"
	domainerrors "karat/contexts/identity-access/access-control/domain/errors"
)

func TestOwnerIsAlwaysAuthorized(t *testing.T) {
	service := Service{Repo: memory.NewStore("owner")}

	ok, err := service.IsAuthorized(context.Background(), "owner")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !ok {
		t.Fatal("owner must be authorized")
	}

	ok, _ = service.IsAuthorized(context.Background(), "stranger")
	if ok {
		t.Fatal("stranger must not be authorized")
	}
}

func TestGrantAuthorizationOwnerOnly(t *testing.T) {
	service := Service{Repo: memory.NewStore("owner")}

	err := service.GrantAuthorization(context.Background(), "stranger", "helper")
	if !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}

	if err := service.GrantAuthorization(context.Background(), "owner", "helper"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	ok, _ := service.IsAuthorized(context.Background(), "helper")
	if !ok {
		t.Fatal("helper should be authorized after grant")
	}

	if err := service.RevokeAuthorization(context.Background(), "owner", "helper"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, _ = service.IsAuthorized(context.Background(), "helper")
	if ok {
		t.Fatal("helper should not be authorized after revoke")
	}
}

func TestWhitelistMaintenanceRequiresAuthorization(t *testing.T) {
	service := Service{Repo: memory.NewStore("owner")}

	err := service.AddToWhitelist(context.Background(), "stranger", "buyer")
	if !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}

	if err := service.GrantAuthorization(context.Background(), "owner", "operator"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := service.AddToWhitelist(context.Background(), "operator", "buyer"); err != nil {
		t.Fatalf("whitelist add failed: %v", err)
	}
	ok, _ := service.IsWhitelisted(context.Background(), "buyer")
	if !ok {
		t.Fatal("buyer should be whitelisted")
	}

	if err := service.RemoveFromWhitelist(context.Background(), "operator", "buyer"); err != nil {
		t.Fatalf("whitelist remove failed: %v", err)
	}
	ok, _ = service.IsWhitelisted(context.Background(), "buyer")
	if ok {
		t.Fatal("buyer should be removed from whitelist")
	}
}

func TestEmptyAccountNeverPasses(t *testing.T) {
	service := Service{Repo: memory.NewStore("owner")}

	if ok, _ := service.IsOwner(context.Background(), "  "); ok {
		t.Fatal("blank account must not be owner")
	}
	if ok, _ := service.IsWhitelisted(context.Background(), ""); ok {
		t.Fatal("blank account must not be whitelisted")
	}
	if err := service.GrantAuthorization(context.Background(), "owner", " "); !errors.Is(err, domainerrors.ErrInvalidAccount) {
		t.Fatalf("expected invalid account, got %v", err)
	}
}
