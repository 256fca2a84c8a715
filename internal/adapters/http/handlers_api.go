package web

import (
	"net/http"

	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/application/orchestrators"
	"fitdash/internal/application/projections"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// exerciseUpdateRequest is the body of an exercise update.
// Clients echo the row's ids back; they are checked against the URL and the
// stored row's program and trainer are kept.
type exerciseUpdateRequest struct {
	program.ExerciseInput
	ExerciseID        *int64 `json:"exerciseId"`
	WorkoutProgramID  *int64 `json:"workoutProgramId"`
	PersonalTrainerID *int64 `json:"personalTrainerId"`
}

// check rejects ids that contradict the route. programID 0 skips the program check.
func (req exerciseUpdateRequest) check(exerciseID, programID int64) error {
	if req.ExerciseID != nil && *req.ExerciseID != exerciseID {
		return apperror.BadRequest("Exercise id does not match the URL")
	}
	if programID != 0 && req.WorkoutProgramID != nil && *req.WorkoutProgramID != programID {
		return apperror.BadRequest("Program id does not match the URL")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAPILogin handles POST /api/auth/login
func (s *server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		Users:    s.stores.Users,
		Sessions: s.cookies.For(w, r),
	})
	if err != nil {
		// A rejected login has no session to end, so it skips respondError's 401 handling.
		status, msg := loginFailure(err)
		middleware.WriteJSONError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"user":     result.User,
		"redirect": result.Redirect,
	})
}

// handleAPIManagerDashboard handles GET /api/manager/dashboard
func (s *server) handleAPIManagerDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	result, err := projections.QueryGetManagerDashboard(r.Context(), sess.Token, projections.ManagerDashboardDeps{
		Users: s.stores.Users,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trainers": result.Trainers,
		"clients":  result.Clients,
		"stats":    result.Stats,
		"user": map[string]string{
			"firstName":   sess.User.FirstName,
			"lastName":    sess.User.LastName,
			"accountType": sess.User.AccountType,
		},
	})
}

// handleAPICreateUser handles POST /api/users
func (s *server) handleAPICreateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleManager)
	if !ok {
		return
	}
	var u account.NewUser
	if err := strictDecode(r, &u); err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := orchestrators.ExecuteCreateUser(r.Context(), orchestrators.CreateUserInput{Session: sess, User: u},
		orchestrators.CreateUserDeps{Users: s.stores.Users})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// handleAPICreateClient handles POST /api/users/clients
func (s *server) handleAPICreateClient(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	var u account.NewUser
	if err := strictDecode(r, &u); err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := orchestrators.ExecuteCreateClient(r.Context(), orchestrators.CreateUserInput{Session: sess, User: u},
		orchestrators.CreateUserDeps{Users: s.stores.Users})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// handleAPIMyClients handles GET /api/users/my-clients
func (s *server) handleAPIMyClients(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	clients, err := s.stores.Users.ListClients(r.Context(), sess.Token)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if clients == nil {
		clients = []account.UserProfile{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// handleAPITrainers handles GET /api/users/trainers
func (s *server) handleAPITrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := projections.QueryListTrainers(r.Context(), sessionOf(r).Token, s.stores.Users)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trainers)
}

// handleAPICreateProgram handles POST /api/programs
func (s *server) handleAPICreateProgram(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	var p program.NewProgram
	if err := strictDecode(r, &p); err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := orchestrators.ExecuteCreateProgram(r.Context(), orchestrators.CreateProgramInput{Session: sess, Program: p}, s.programDeps())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// handleAPIUpdateProgram handles PUT /api/programs/{id}
func (s *server) handleAPIUpdateProgram(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var u program.ProgramUpdate
	if err := strictDecode(r, &u); err != nil {
		s.respondError(w, r, err)
		return
	}
	u.WorkoutProgramID = id
	if err := orchestrators.ExecuteUpdateProgram(r.Context(), orchestrators.UpdateProgramInput{Session: sess, Update: u}, s.programDeps()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeSuccess(w)
}

// handleAPIDeleteProgram handles DELETE /api/programs/{id}
func (s *server) handleAPIDeleteProgram(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := orchestrators.ExecuteDeleteProgram(r.Context(), orchestrators.DeleteProgramInput{Session: sess, ProgramID: id}, s.programDeps()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeSuccess(w)
}

// handleAPIListExercises handles GET /api/programs/{id}/exercises
// Answers from the workspace, so edits not yet visible in the backend are included.
func (s *server) handleAPIListExercises(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleTrainer); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := workspace.Items()
	if items == nil {
		items = []program.Exercise{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercises": items,
		"pending":   workspace.Pending(),
	})
}

// handleAPIAddExercise handles POST /api/programs/{id}/exercises
func (s *server) handleAPIAddExercise(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleTrainer); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var in program.ExerciseInput
	if err := strictDecode(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := workspace.Add(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// handleAPIUpdateProgramExercise handles PUT /api/programs/{id}/exercises/{exerciseId}
func (s *server) handleAPIUpdateProgramExercise(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleTrainer); !ok {
		return
	}
	id, exerciseID, err := programExerciseIDs(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req exerciseUpdateRequest
	if err := strictDecode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := req.check(exerciseID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	workspace, err := s.exerciseWorkspace(r, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	updated, err := workspace.Update(r.Context(), exerciseID, req.ExerciseInput)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleAPIDeleteProgramExercise handles DELETE /api/programs/{id}/exercises/{exerciseId}
// Always succeeds locally; confirmed reports whether the backend accepted the delete.
func (s *server) handleAPIDeleteProgramExercise(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleTrainer); !ok {
		return
	}
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
	confirmed, err := workspace.Delete(r.Context(), exerciseID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "confirmed": confirmed})
}

// handleAPIUpdateExercise handles PUT /api/exercises/{id}
func (s *server) handleAPIUpdateExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req exerciseUpdateRequest
	if err := strictDecode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := req.check(id, 0); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := orchestrators.ExecuteUpdateExercise(r.Context(), orchestrators.UpdateExerciseInput{
		Token:      sess.Token,
		ExerciseID: id,
		Exercise:   req.ExerciseInput,
	}, orchestrators.ExerciseDeps{Exercises: s.stores.Exercises}); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeSuccess(w)
}

// handleAPIDeleteExercise handles DELETE /api/exercises/{id}
func (s *server) handleAPIDeleteExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleTrainer)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := orchestrators.ExecuteDeleteExercise(r.Context(), sess.Token, id, orchestrators.ExerciseDeps{Exercises: s.stores.Exercises}); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeSuccess(w)
}
