package user

import (
	"context"

	"fitdash/internal/adapters/backend"
	"fitdash/internal/domain/account"
)

// APIStore implements Store against the backend's /api/Users endpoints.
type APIStore struct {
	client *backend.Client
}

// Compile-time check that *APIStore satisfies Store.
var _ Store = (*APIStore)(nil)

// NewAPIStore creates a new user store.
func NewAPIStore(client *backend.Client) *APIStore {
	return &APIStore{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	JWT string `json:"jwt"`
}

// Login exchanges credentials for a bearer token.
// PRE: email and password are non-empty
// POST: Returns the token; an empty string means the backend issued none
func (s *APIStore) Login(ctx context.Context, email, password string) (string, error) {
	out, err := backend.Post[tokenResponse](ctx, s.client, "/api/Users/login", loginRequest{Email: email, Password: password}, "")
	if err != nil {
		return "", err
	}
	return out.JWT, nil
}

// List returns every user visible to the caller.
func (s *APIStore) List(ctx context.Context, token string) ([]account.UserProfile, error) {
	return backend.Get[[]account.UserProfile](ctx, s.client, "/api/Users", token)
}

// ListClients returns the clients of the calling trainer.
func (s *APIStore) ListClients(ctx context.Context, token string) ([]account.UserProfile, error) {
	return backend.Get[[]account.UserProfile](ctx, s.client, "/api/Users/Clients", token)
}

// GetTrainer returns the trainer assigned to the calling client.
func (s *APIStore) GetTrainer(ctx context.Context, token string) (account.UserProfile, error) {
	return backend.Get[account.UserProfile](ctx, s.client, "/api/Users/Trainer", token)
}

// Create registers a new user.
// PRE: u has been validated
func (s *APIStore) Create(ctx context.Context, token string, u account.NewUser) (account.UserProfile, error) {
	return backend.Post[account.UserProfile](ctx, s.client, "/api/Users", u, token)
}
