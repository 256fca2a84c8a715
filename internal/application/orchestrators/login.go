package orchestrators

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fitdash/internal/adapters/backend/credential"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

// UserStoreForLogin defines the store interface needed by Login.
type UserStoreForLogin interface {
	Login(ctx context.Context, email, password string) (string, error)
	List(ctx context.Context, token string) ([]account.UserProfile, error)
}

// SessionWriter persists an authenticated session.
type SessionWriter interface {
	WriteSession(profile account.UserProfile, token string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	User     account.UserProfile
	Redirect string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Users    UserStoreForLogin
	Sessions SessionWriter
}

// ExecuteLogin exchanges credentials for a bearer token, resolves the caller's
// profile and commits both to the session store.
// PRE: none
// POST: On success a session exists and Redirect is the role's landing route
// INVARIANT: No session is written on any failure path
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "missing_fields")
		return LoginResult{}, apperror.BadRequest("Email and password are required")
	}

	token, err := deps.Users.Login(ctx, input.Email, input.Password)
	if err != nil {
		return LoginResult{}, loginRejected(input.Email, err)
	}
	if token == "" {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "no_token")
		return LoginResult{}, apperror.Unauthorized("Invalid credentials")
	}

	users, err := deps.Users.List(ctx, token)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "profile_lookup", "error", err)
		return LoginResult{}, asAppError(err)
	}

	profile, ok := findByEmail(users, input.Email)
	if !ok {
		slog.Warn("auth_event", "event", "login_failed", "email", input.Email, "reason", "profile_missing")
		return LoginResult{}, apperror.NotFound("User not found")
	}

	if err := deps.Sessions.WriteSession(profile, token); err != nil {
		slog.Error("auth_event", "event", "login_failed", "email", input.Email, "reason", "session_write", "error", err)
		return LoginResult{}, apperror.ServerFailure("Could not start session")
	}

	attrs := []any{"event", "login_success", "email", profile.Email, "role", string(profile.Role())}
	if claims, err := credential.Inspect(token); err == nil && claims.HasExpiry() {
		attrs = append(attrs, "token_expires_in", claims.ExpiresIn(time.Now()).Round(time.Second).String())
	}
	slog.Info("auth_event", attrs...)

	return LoginResult{
		User:     profile,
		Redirect: account.LandingRouteFor(profile.AccountType),
	}, nil
}

// loginRejected maps a failed credential exchange to Unauthorized.
// Transport failures stay NetworkFailure since the backend never gave a verdict.
func loginRejected(email string, err error) error {
	appErr, ok := apperror.As(err)
	if ok && appErr.Kind() == apperror.KindNetworkFailure {
		slog.Warn("auth_event", "event", "login_failed", "email", email, "reason", "backend_unreachable", "error", err)
		return appErr
	}

	slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "rejected")
	if !ok {
		return apperror.Unauthorized("Invalid credentials")
	}
	msg := appErr.Message
	if msg == "" {
		msg = "Invalid credentials"
	}
	return apperror.FromStatus(http.StatusUnauthorized, msg, appErr.Payload)
}

// findByEmail returns the profile whose email equals email exactly.
func findByEmail(users []account.UserProfile, email string) (account.UserProfile, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return account.UserProfile{}, false
}

// asAppError passes taxonomy errors through and wraps anything else as a server failure.
func asAppError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.ServerFailure(err.Error())
}
