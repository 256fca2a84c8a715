package user

import (
	"context"

	"fitdash/internal/domain/account"
)

// Store reads and writes users through the backend API.
// Every method except Login needs the caller's bearer token.
type Store interface {
	Login(ctx context.Context, email, password string) (string, error)
	List(ctx context.Context, token string) ([]account.UserProfile, error)
	ListClients(ctx context.Context, token string) ([]account.UserProfile, error)
	GetTrainer(ctx context.Context, token string) (account.UserProfile, error)
	Create(ctx context.Context, token string, u account.NewUser) (account.UserProfile, error)
}
