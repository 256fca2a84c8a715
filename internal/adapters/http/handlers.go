package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/adapters/http/requestid"
	"fitdash/internal/domain/access"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var funcMap = template.FuncMap{
	"renderMarkdown": renderMarkdown,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"derefInt": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
	"isSelected": func(id int64, selected *int64) bool {
		return selected != nil && *selected == id
	},
	"add":     func(a, b int) int { return a + b },
	"landing": account.LandingRouteFor,
}

// renderer holds one parsed template set per page, each combined with the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	paths, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	pages := make(map[string]*template.Template, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		if name == "layout.html" {
			continue
		}
		pages[name] = template.Must(template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", p))
	}
	return &renderer{pages: pages}
}

// render executes a page into a buffer so a template failure never leaves a half-written response.
// The caller's session, if any, is exposed to the layout as .User.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	tpl, ok := s.pages.pages[name]
	if !ok {
		internalError(w, r, &missingTemplateError{name: name})
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		data["User"] = sess.User
		data["Role"] = string(sess.User.Role())
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type missingTemplateError struct{ name string }

func (e *missingTemplateError) Error() string { return "template not found: " + e.name }

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error",
		"request_id", requestid.FromContext(r.Context()),
		"path", r.URL.Path,
		"error", err.Error(),
	)
	if access.IsAPIPath(r.URL.Path) {
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// respondError is the single mapping from a failed operation to a response.
// A 401 from the backend means the credential died: the session is cleared and the
// caller is sent to /login (pages) or answered 401 (API). Other AppErrors carry their
// own status and message. Anything else is an internal error.
func (s *server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		internalError(w, r, err)
		return
	}

	if appErr.Kind() == apperror.KindUnauthorized {
		s.endSession(w, r, "backend_unauthorized")
		if access.IsAPIPath(r.URL.Path) {
			middleware.WriteJSONError(w, http.StatusUnauthorized, appErr.Message)
			return
		}
		http.Redirect(w, r, account.RouteLogin, http.StatusSeeOther)
		return
	}

	status := appErr.HTTPStatus()
	slog.Info("request_failed",
		"request_id", requestid.FromContext(r.Context()),
		"path", r.URL.Path,
		"kind", appErr.Kind().String(),
		"status", status,
		"error", appErr.Error(),
	)
	if access.IsAPIPath(r.URL.Path) {
		middleware.WriteJSONError(w, status, appErr.Message)
		return
	}
	s.render(w, r, status, "error.html", map[string]any{
		"Status":   status,
		"Message":  appErr.Message,
		"RetryURL": retryURL(r),
	})
}

// endSession clears the caller's cookies and their exercise workspaces.
func (s *server) endSession(w http.ResponseWriter, r *http.Request, reason string) {
	store := s.cookies.For(w, r)
	if token, ok := store.ReadCredential(); ok {
		s.workspaces.Forget(token)
	}
	store.ClearSession()
	slog.Info("session_cleared",
		"request_id", requestid.FromContext(r.Context()),
		"path", r.URL.Path,
		"reason", reason,
	)
}

// retryURL is where "Try again" points: the same page for GETs, otherwise the page the form was on.
func retryURL(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		return ref.RequestURI()
	}
	return account.RouteRoot
}

// sessionOf returns the session the gate placed in the context.
func sessionOf(r *http.Request) account.Session {
	sess, _ := middleware.SessionFromContext(r.Context())
	return sess
}

// requireRole checks the session role for API handlers whose paths the gate only marks as authenticated.
// Returns false if the request should not proceed.
func requireRole(w http.ResponseWriter, r *http.Request, role account.Role) (account.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		middleware.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return account.Session{}, false
	}
	if sess.User.Role() != role {
		slog.Warn("auth_denied", "path", r.URL.Path, "user_id", sess.User.UserID, "role", string(sess.User.Role()), "required", string(role))
		middleware.WriteJSONError(w, http.StatusForbidden, "Forbidden")
		return account.Session{}, false
	}
	return sess, true
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
