package web

import (
	"log/slog"
	"net/http"
	"strings"

	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/adapters/http/requestid"
	"fitdash/internal/application/orchestrators"
	"fitdash/internal/domain/access"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

// handleHome sends a signed-in caller to their landing page and shows the welcome page otherwise.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if target := account.LandingRouteFor(sess.User.AccountType); target != account.RouteRoot {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
	}
	s.render(w, r, http.StatusOK, "home.html", nil)
}

// handleLoginPage handles GET /login. The gate already redirects signed-in callers.
func (s *server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", nil)
}

// handleLogin handles POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", map[string]any{"Error": "Invalid form submission"})
		return
	}

	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		Users:    s.stores.Users,
		Sessions: s.cookies.For(w, r),
	})
	if err != nil {
		status, msg := loginFailure(err)
		s.render(w, r, status, "login.html", map[string]any{
			"Error": msg,
			"Email": input.Email,
		})
		return
	}
	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

// loginFailure picks the status and inline message for a failed login.
func loginFailure(err error) (int, string) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, "Login failed"
	}
	return appErr.HTTPStatus(), appErr.Message
}

// handleLogout handles GET and POST /logout
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutDeps{
		Sessions:   s.cookies.For(w, r),
		Workspaces: s.workspaces,
	})
	http.Redirect(w, r, account.RouteLogin, http.StatusSeeOther)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleNotFound answers requests no route claims.
// A path registered under another method gets 405 with an Allow header.
func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	allowed := s.allowedMethods(r)
	if len(allowed) == 0 {
		s.respondError(w, r, apperror.NotFound("Page not found"))
		return
	}

	slog.Info("method_not_allowed",
		"request_id", requestid.FromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	if access.IsAPIPath(r.URL.Path) {
		middleware.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.render(w, r, http.StatusMethodNotAllowed, "error.html", map[string]any{
		"Status":   http.StatusMethodNotAllowed,
		"Message":  "Method not allowed",
		"RetryURL": retryURL(r),
	})
}

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// allowedMethods lists the methods with a route for r's path other than the catch-all.
func (s *server) allowedMethods(r *http.Request) []string {
	var allowed []string
	for _, m := range routeMethods {
		if m == r.Method {
			continue
		}
		alt := r.Clone(r.Context())
		alt.Method = m
		if _, pattern := s.mux.Handler(alt); pattern != "" && pattern != catchAllPattern {
			allowed = append(allowed, m)
		}
	}
	return allowed
}
