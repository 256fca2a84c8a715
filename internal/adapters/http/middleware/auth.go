package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"fitdash/internal/adapters/http/requestid"
	"fitdash/internal/domain/access"
	"fitdash/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Gate returns middleware that evaluates the access decision for every request.
// Allowed requests carry the caller's session (if any) in their context.
// Denied page requests are redirected with 303; denied /api/ requests get a JSON 401 or 403.
func Gate(stores CookieStoreFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := stores.For(w, r).ReadSession()
			decision := access.Decide(r.URL.Path, session, ok)
			if !decision.Allow {
				deny(w, r, decision)
				return
			}
			if ok {
				r = r.WithContext(ContextWithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, d access.Decision) {
	slog.Debug("gate_redirect",
		"request_id", requestid.FromContext(r.Context()),
		"path", r.URL.Path,
		"redirect", d.Redirect,
		"reason", d.Reason.String(),
	)

	if !access.IsAPIPath(r.URL.Path) {
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		return
	}
	if d.Reason == access.ReasonWrongRole {
		WriteJSONError(w, http.StatusForbidden, "Forbidden")
		return
	}
	WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

// WriteJSONError answers with {"error": message} and the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// SessionFromContext extracts the session placed by Gate.
func SessionFromContext(ctx context.Context) (account.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(account.Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, session account.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
