package web

import (
	"net/http"
	"time"

	exerciseStore "fitdash/internal/adapters/backend/exercise"
	programStore "fitdash/internal/adapters/backend/program"
	userStore "fitdash/internal/adapters/backend/user"
	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/adapters/http/perf"
	"fitdash/internal/application/orchestrators"
)

// Stores holds the backend-facing stores.
type Stores struct {
	Users     userStore.Store
	Programs  programStore.Store
	Exercises exerciseStore.Store
}

// Deps holds everything NewMux wires together.
type Deps struct {
	Stores      Stores
	Cookies     middleware.CookieStoreFactory
	Workspaces  *orchestrators.ExerciseManagers
	Collector   *perf.Collector         // optional
	Limiter     *middleware.RateLimiter // optional
	SlowRequest time.Duration
}

// server carries the dependencies shared by every handler.
type server struct {
	stores     Stores
	cookies    middleware.CookieStoreFactory
	workspaces *orchestrators.ExerciseManagers
	collector  *perf.Collector
	pages      *renderer
	mux        *http.ServeMux
}

// catchAllPattern claims every path no other route matches.
const catchAllPattern = "/"

// NewMux wires HTTP handlers for the app.
// Middleware order, outermost first: SecurityHeaders, RequestID, Timing, RateLimit, Gate.
func NewMux(deps Deps) http.Handler {
	s := &server{
		stores:     deps.Stores,
		cookies:    deps.Cookies,
		workspaces: deps.Workspaces,
		collector:  deps.Collector,
		pages:      newRenderer(),
	}
	if s.workspaces == nil {
		s.workspaces = orchestrators.NewExerciseManagers(deps.Stores.Exercises, 0)
	}

	mux := http.NewServeMux()
	s.mux = mux
	s.registerRoutes(mux)

	middlewares := []func(http.Handler) http.Handler{middleware.Gate(deps.Cookies)}
	if deps.Limiter != nil {
		middlewares = append(middlewares, middleware.RateLimit(deps.Limiter))
	}
	middlewares = append(middlewares,
		middleware.Timing(deps.Collector, deps.SlowRequest),
		middleware.RequestID,
		middleware.SecurityHeaders,
	)
	return middleware.Chain(mux, middlewares...)
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	// Public and session pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc(catchAllPattern, s.handleNotFound)
	mux.Handle("GET /static/", staticHandler())

	// Manager pages
	mux.HandleFunc("GET /manager/dashboard", s.handleManagerDashboard)
	mux.HandleFunc("GET /manager/users/new", s.handleNewUserPage)
	mux.HandleFunc("POST /manager/users/new", s.handleCreateUser)
	mux.HandleFunc("GET /manager/perf", s.handlePerfPage)

	// Trainer pages
	mux.HandleFunc("GET /trainer/dashboard", s.handleTrainerDashboard)
	mux.HandleFunc("GET /trainer/programs", s.handleProgramsPage)
	mux.HandleFunc("GET /trainer/programs/new", s.handleNewProgramPage)
	mux.HandleFunc("POST /trainer/programs/new", s.handleCreateProgram)
	mux.HandleFunc("GET /trainer/programs/{id}", s.handleProgramPage)
	mux.HandleFunc("POST /trainer/programs/{id}", s.handleUpdateProgram)
	mux.HandleFunc("POST /trainer/programs/{id}/delete", s.handleDeleteProgram)
	mux.HandleFunc("POST /trainer/programs/{id}/exercises", s.handleAddExercise)
	mux.HandleFunc("POST /trainer/programs/{id}/exercises/{exerciseId}", s.handleUpdateExercise)
	mux.HandleFunc("POST /trainer/programs/{id}/exercises/{exerciseId}/delete", s.handleDeleteExercise)

	// Client pages
	mux.HandleFunc("GET /client/dashboard", s.handleClientDashboard)
	mux.HandleFunc("GET /client/programs/{id}", s.handleClientProgramPage)

	// JSON API
	mux.HandleFunc("POST /api/auth/login", s.handleAPILogin)
	mux.HandleFunc("GET /api/manager/dashboard", s.handleAPIManagerDashboard)
	mux.HandleFunc("POST /api/users", s.handleAPICreateUser)
	mux.HandleFunc("POST /api/users/clients", s.handleAPICreateClient)
	mux.HandleFunc("GET /api/users/my-clients", s.handleAPIMyClients)
	mux.HandleFunc("GET /api/users/trainers", s.handleAPITrainers)
	mux.HandleFunc("POST /api/programs", s.handleAPICreateProgram)
	mux.HandleFunc("PUT /api/programs/{id}", s.handleAPIUpdateProgram)
	mux.HandleFunc("DELETE /api/programs/{id}", s.handleAPIDeleteProgram)
	mux.HandleFunc("GET /api/programs/{id}/exercises", s.handleAPIListExercises)
	mux.HandleFunc("POST /api/programs/{id}/exercises", s.handleAPIAddExercise)
	mux.HandleFunc("PUT /api/programs/{id}/exercises/{exerciseId}", s.handleAPIUpdateProgramExercise)
	mux.HandleFunc("DELETE /api/programs/{id}/exercises/{exerciseId}", s.handleAPIDeleteProgramExercise)
	mux.HandleFunc("PUT /api/exercises/{id}", s.handleAPIUpdateExercise)
	mux.HandleFunc("DELETE /api/exercises/{id}", s.handleAPIDeleteExercise)
}
