package access

import (
	"strings"

	"fitdash/internal/domain/account"
)

// Level is the protection state of a route.
type Level int

const (
	LevelPublic Level = iota
	LevelAuthOnly
	LevelRoleRestricted
)

// Requirement is what a path demands of the caller.
// Role is only set when Level is LevelRoleRestricted.
type Requirement struct {
	Level Level
	Role  account.Role
}

// API routes that are reachable without a session.
const (
	apiPrefix     = "/api/"
	apiLoginRoute = "/api/auth/login"
)

// rolePrefixes maps path prefixes to the role they are reserved for.
// Checked in order; the first match wins.
var rolePrefixes = []struct {
	prefix string
	role   account.Role
}{
	{"/api/manager", account.RoleManager},
	{"/manager", account.RoleManager},
	{"/trainer", account.RoleTrainer},
	{"/client", account.RoleClient},
}

// Classify returns the requirement for a request path.
// A prefix matches the path itself or the path followed by "/", so "/clientele" is public.
func Classify(path string) Requirement {
	for _, rp := range rolePrefixes {
		if hasSegmentPrefix(path, rp.prefix) {
			return Requirement{Level: LevelRoleRestricted, Role: rp.role}
		}
	}
	if strings.HasPrefix(path, apiPrefix) && path != apiLoginRoute {
		return Requirement{Level: LevelAuthOnly}
	}
	return Requirement{Level: LevelPublic}
}

// IsAPIPath reports whether the path belongs to the JSON API surface.
func IsAPIPath(path string) bool {
	return strings.HasPrefix(path, apiPrefix)
}

func hasSegmentPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Reason explains why a request was redirected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoSession
	ReasonAlreadyAuthenticated
	ReasonWrongRole
)

// String returns the snake_case name used in logs.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoSession:
		return "no_session"
	case ReasonAlreadyAuthenticated:
		return "already_authenticated"
	case ReasonWrongRole:
		return "wrong_role"
	default:
		return "unknown"
	}
}

// Decision is the outcome of the gate for one request: allow, or redirect to a path.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   Reason
}

// Allow is the decision that lets the request through.
var Allow = Decision{Allow: true}

func redirect(path string, reason Reason) Decision {
	return Decision{Redirect: path, Reason: reason}
}

// Decide evaluates the gate rules for path given the caller's session.
// hasSession must be false when either cookie is missing or the profile failed to parse.
// PRE: none
// POST: Returns Allow, or a redirect with a non-empty path
// INVARIANT: Pure; no session state is read or written beyond the arguments
func Decide(path string, session account.Session, hasSession bool) Decision {
	req := Classify(path)

	if !hasSession {
		if req.Level == LevelPublic {
			return Allow
		}
		return redirect(account.RouteLogin, ReasonNoSession)
	}

	if path == account.RouteLogin {
		return redirect(account.LandingRouteFor(session.User.AccountType), ReasonAlreadyAuthenticated)
	}

	if req.Level == LevelRoleRestricted && session.User.Role() != req.Role {
		return redirect(account.RouteRoot, ReasonWrongRole)
	}

	return Allow
}
