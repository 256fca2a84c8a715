package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fitdash/internal/application/orchestrators"
	"fitdash/internal/application/projections"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

// handleManagerDashboard handles GET /manager/dashboard
func (s *server) handleManagerDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetManagerDashboard(r.Context(), sessionOf(r).Token, projections.ManagerDashboardDeps{
		Users: s.stores.Users,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "manager_dashboard.html", map[string]any{
		"Dashboard": result,
	})
}

// handleNewUserPage handles GET /manager/users/new
func (s *server) handleNewUserPage(w http.ResponseWriter, r *http.Request) {
	s.renderNewUserForm(w, r, http.StatusOK, account.NewUser{AccountType: account.AccountTypeClient}, "")
}

// handleCreateUser handles POST /manager/users/new
func (s *server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, apperror.BadRequest("Invalid form submission"))
		return
	}

	u := account.NewUser{
		FirstName:   strings.TrimSpace(r.FormValue("firstName")),
		LastName:    strings.TrimSpace(r.FormValue("lastName")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		AccountType: r.FormValue("accountType"),
	}
	if v := r.FormValue("personalTrainerId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.renderNewUserForm(w, r, http.StatusBadRequest, u, "Invalid trainer")
			return
		}
		u.PersonalTrainerID = &id
	}

	_, err := orchestrators.ExecuteCreateUser(r.Context(), orchestrators.CreateUserInput{
		Session: sessionOf(r),
		User:    u,
	}, orchestrators.CreateUserDeps{Users: s.stores.Users})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindBadRequest {
			appErr, _ := apperror.As(err)
			s.renderNewUserForm(w, r, appErr.HTTPStatus(), u, appErr.Message)
			return
		}
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, account.RouteManagerDashboard, http.StatusSeeOther)
}

func (s *server) renderNewUserForm(w http.ResponseWriter, r *http.Request, status int, u account.NewUser, formErr string) {
	trainers, err := projections.QueryListTrainers(r.Context(), sessionOf(r).Token, s.stores.Users)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, status, "manager_user_new.html", map[string]any{
		"Form":         u,
		"Error":        formErr,
		"Trainers":     trainers,
		"AccountTypes": account.ValidAccountTypes,
	})
}

// handlePerfPage handles GET /manager/perf
func (s *server) handlePerfPage(w http.ResponseWriter, r *http.Request) {
	window := time.Hour
	if v := r.URL.Query().Get("minutes"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			window = time.Duration(m) * time.Minute
		}
	}
	data := map[string]any{"WindowMinutes": int(window / time.Minute)}
	if s.collector != nil {
		data["Perf"] = s.collector.Snapshot(time.Now().Add(-window), 10)
	}
	s.render(w, r, http.StatusOK, "manager_perf.html", data)
}
