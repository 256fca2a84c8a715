package orchestrators

import (
	"context"
	"log/slog"

	"fitdash/internal/adapters/http/requestid"
)

// SessionClearer reads and removes the caller's session.
type SessionClearer interface {
	ReadCredential() (string, bool)
	ClearSession()
}

// WorkspaceForgetter drops per-credential state held between requests.
type WorkspaceForgetter interface {
	Forget(token string)
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions   SessionClearer
	Workspaces WorkspaceForgetter
}

// ExecuteLogout ends the caller's session.
// PRE: none
// POST: No session exists; exercise workspaces bound to the old credential are gone
// INVARIANT: Idempotent; logging out without a session is not an error
func ExecuteLogout(ctx context.Context, deps LogoutDeps) {
	token, hadSession := deps.Sessions.ReadCredential()
	deps.Sessions.ClearSession()

	if hadSession && deps.Workspaces != nil {
		deps.Workspaces.Forget(token)
	}
	slog.Info("auth_event",
		"event", "logout",
		"request_id", requestid.FromContext(ctx),
		"had_session", hadSession,
	)
}
