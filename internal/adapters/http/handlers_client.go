package web

import (
	"net/http"

	"fitdash/internal/application/projections"
)

// handleClientDashboard handles GET /client/dashboard
func (s *server) handleClientDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetClientDashboard(r.Context(), sessionOf(r).Token, projections.ClientDashboardDeps{
		Programs: s.stores.Programs,
		Trainers: s.stores.Users,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "client_dashboard.html", map[string]any{
		"Dashboard": result,
	})
}

// handleClientProgramPage handles GET /client/programs/{id}
func (s *server) handleClientProgramPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := projections.QueryGetClientProgram(r.Context(), sessionOf(r).Token, id, s.stores.Programs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "client_program.html", map[string]any{
		"Program": p,
	})
}
