package orchestrators

import (
	"context"
	"log/slog"

	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

// UserStoreForCreate defines the store interface needed to create users.
type UserStoreForCreate interface {
	Create(ctx context.Context, token string, u account.NewUser) (account.UserProfile, error)
}

// CreateUserInput carries input for the create user orchestrator.
type CreateUserInput struct {
	Session account.Session
	User    account.NewUser
}

// CreateUserDeps holds dependencies for CreateUser and CreateClient.
type CreateUserDeps struct {
	Users UserStoreForCreate
}

// ExecuteCreateUser creates a user of any account type on behalf of a manager.
// A trainer assignment is only kept for clients.
// PRE: input.Session is authenticated
// POST: Returns the created profile, or a BadRequest AppError for invalid input
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps CreateUserDeps) (account.UserProfile, error) {
	u := input.User
	if account.ParseRole(u.AccountType) != account.RoleClient {
		u.PersonalTrainerID = nil
	}
	return createUser(ctx, input.Session, u, deps)
}

// ExecuteCreateClient creates a client owned by the calling trainer.
// Account type and trainer assignment are forced regardless of what was submitted.
// PRE: input.Session belongs to a trainer
// POST: Returns the created client profile
func ExecuteCreateClient(ctx context.Context, input CreateUserInput, deps CreateUserDeps) (account.UserProfile, error) {
	u := input.User
	trainerID := input.Session.User.UserID
	u.AccountType = account.AccountTypeClient
	u.PersonalTrainerID = &trainerID
	return createUser(ctx, input.Session, u, deps)
}

func createUser(ctx context.Context, session account.Session, u account.NewUser, deps CreateUserDeps) (account.UserProfile, error) {
	if err := u.Validate(); err != nil {
		return account.UserProfile{}, apperror.BadRequest(err.Error())
	}

	created, err := deps.Users.Create(ctx, session.Token, u)
	if err != nil {
		return account.UserProfile{}, asAppError(err)
	}

	slog.Info("user_event",
		"event", "user_created",
		"by", session.User.Email,
		"email", created.Email,
		"account_type", u.AccountType,
	)
	return created, nil
}
