package auth

import "context"

type StoreAPI interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	EnsureUser(ctx context.Context, user NewUser) (string, bool, error)
}
