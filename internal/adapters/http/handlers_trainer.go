package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"fitdash/internal/application/orchestrators"
	"fitdash/internal/application/projections"
	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// handleTrainerDashboard handles GET /trainer/dashboard
func (s *server) handleTrainerDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetTrainerDashboard(r.Context(), sessionOf(r).Token, projections.TrainerDashboardDeps{
		Clients:  s.stores.Users,
		Programs: s.stores.Programs,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "trainer_dashboard.html", map[string]any{
		"Dashboard": result,
	})
}

// handleProgramsPage handles GET /trainer/programs
func (s *server) handleProgramsPage(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryListPrograms(r.Context(), sessionOf(r).Token, s.programsDeps())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "trainer_programs.html", map[string]any{
		"Programs": result.Programs,
		"Clients":  result.Clients,
	})
}

// handleNewProgramPage handles GET /trainer/programs/new
func (s *server) handleNewProgramPage(w http.ResponseWriter, r *http.Request) {
	s.renderNewProgramForm(w, r, http.StatusOK, program.NewProgram{}, "")
}

// handleCreateProgram handles POST /trainer/programs/new
func (s *server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, apperror.BadRequest("Invalid form submission"))
		return
	}
	clientID, err := optionalID(r.FormValue("clientId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p := program.NewProgram{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		ClientID:    clientID,
	}

	created, err := orchestrators.ExecuteCreateProgram(r.Context(), orchestrators.CreateProgramInput{
		Session: sessionOf(r),
		Program: p,
	}, s.programDeps())
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Kind() == apperror.KindBadRequest {
			s.renderNewProgramForm(w, r, appErr.HTTPStatus(), p, appErr.Message)
			return
		}
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, programURL(created.WorkoutProgramID), http.StatusSeeOther)
}

func (s *server) renderNewProgramForm(w http.ResponseWriter, r *http.Request, status int, p program.NewProgram, formErr string) {
	clients, err := s.stores.Users.ListClients(r.Context(), sessionOf(r).Token)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, status, "trainer_program_new.html", map[string]any{
		"Form":    p,
		"Error":   formErr,
		"Clients": clients,
	})
}

// handleProgramPage handles GET /trainer/programs/{id}
// The program just read is the server snapshot offered to the exercise workspace.
func (s *server) handleProgramPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess := sessionOf(r)
	details, err := projections.QueryGetProgramDetails(r.Context(), sess.Token, id, s.programsDeps())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	workspace := s.workspaces.Open(sess.Token, id, details.Program.Exercises)
	s.render(w, r, http.StatusOK, "trainer_program.html", map[string]any{
		"Program":        details.Program,
		"Clients":        details.Clients,
		"AssignedClient": details.AssignedClient,
		"Exercises":      workspace.Items(),
		"Pending":        workspace.Pending(),
	})
}

// handleUpdateProgram handles POST /trainer/programs/{id}
func (s *server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, apperror.BadRequest("Invalid form submission"))
		return
	}
	clientID, err := optionalID(r.FormValue("clientId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	err = orchestrators.ExecuteUpdateProgram(r.Context(), orchestrators.UpdateProgramInput{
		Session: sessionOf(r),
		Update: program.ProgramUpdate{
			WorkoutProgramID: id,
			Name:             strings.TrimSpace(r.FormValue("name")),
			Description:      strings.TrimSpace(r.FormValue("description")),
			ClientID:         clientID,
		},
	}, s.programDeps())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, programURL(id), http.StatusSeeOther)
}

// handleDeleteProgram handles POST /trainer/programs/{id}/delete
func (s *server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	err = orchestrators.ExecuteDeleteProgram(r.Context(), orchestrators.DeleteProgramInput{
		Session:   sessionOf(r),
		ProgramID: id,
	}, s.programDeps())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/trainer/programs", http.StatusSeeOther)
}

// handleAddExercise handles POST /trainer/programs/{id}/exercises
func (s *server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := exerciseFromForm(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := workspace.Add(r.Context(), in); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, programURL(id), http.StatusSeeOther)
}

// handleUpdateExercise handles POST /trainer/programs/{id}/exercises/{exerciseId}
func (s *server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, exerciseID, err := programExerciseIDs(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := exerciseFromForm(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := workspace.Update(r.Context(), exerciseID, in); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, programURL(id), http.StatusSeeOther)
}

// handleDeleteExercise handles POST /trainer/programs/{id}/exercises/{exerciseId}/delete
// The exercise leaves the page even when the backend refused the delete.
func (s *server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, exerciseID, err := programExerciseIDs(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := workspace.Delete(r.Context(), exerciseID); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, programURL(id), http.StatusSeeOther)
}

// exerciseWorkspace returns the caller's workspace for a program, loading it from the backend on first use.
func (s *server) exerciseWorkspace(r *http.Request, programID int64) (*orchestrators.ExerciseManager, error) {
	token := sessionOf(r).Token
	return s.workspaces.Get(r.Context(), token, programID, func(ctx context.Context) ([]program.Exercise, error) {
		p, err := s.stores.Programs.GetByID(ctx, token, programID)
		if err != nil {
			return nil, err
		}
		return p.Exercises, nil
	})
}

func (s *server) programsDeps() projections.ProgramsDeps {
	return projections.ProgramsDeps{Programs: s.stores.Programs, Clients: s.stores.Users}
}

func (s *server) programDeps() orchestrators.ProgramDeps {
	return orchestrators.ProgramDeps{Programs: s.stores.Programs, Workspaces: s.workspaces}
}

func exerciseFromForm(r *http.Request) (program.ExerciseInput, error) {
	if err := r.ParseForm(); err != nil {
		return program.ExerciseInput{}, apperror.BadRequest("Invalid form submission")
	}
	in, err := program.ParseExerciseForm(
		r.FormValue("name"),
		r.FormValue("description"),
		r.FormValue("sets"),
		r.FormValue("repetitions"),
		r.FormValue("time"),
	)
	if err != nil {
		return program.ExerciseInput{}, apperror.BadRequest(err.Error())
	}
	return in, nil
}

func programExerciseIDs(r *http.Request) (int64, int64, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	exerciseID, err := pathID(r, "exerciseId")
	if err != nil {
		return 0, 0, err
	}
	return id, exerciseID, nil
}

// optionalID parses an optional id form value; empty means none.
func optionalID(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperror.BadRequest("Invalid client")
	}
	return &id, nil
}

func programURL(id int64) string {
	return "/trainer/programs/" + strconv.FormatInt(id, 10)
}
