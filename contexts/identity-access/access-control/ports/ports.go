package ports

import "context"

// Repository is the capability membership store.
type Repository interface {
	Owner(ctx context.Context) (string, error)
	IsAuthorized(ctx context.Context, account string) (bool, error)
	AddAuthorized(ctx context.Context, account string) error
	RemoveAuthorized(ctx context.Context, account string) error

	IsWhitelisted(ctx context.Context, account string) (bool, error)
	AddWhitelisted(ctx context.Context, account string) error
	RemoveWhitelisted(ctx context.Context, account string) error
}
