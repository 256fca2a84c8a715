package orchestrators

import (
	"context"
	"log/slog"

	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// ProgramStoreForWrite defines the store interface needed to change programs.
type ProgramStoreForWrite interface {
	Create(ctx context.Context, token string, p program.NewProgram) (program.WorkoutProgram, error)
	Update(ctx context.Context, token string, u program.ProgramUpdate) error
	Delete(ctx context.Context, token string, id int64) error
}

// WorkspaceDropper discards the exercise workspace of one program.
type WorkspaceDropper interface {
	Drop(token string, programID int64)
}

// ProgramDeps holds dependencies for the program orchestrators.
type ProgramDeps struct {
	Programs   ProgramStoreForWrite
	Workspaces WorkspaceDropper
}

// CreateProgramInput carries input for CreateProgram.
type CreateProgramInput struct {
	Session account.Session
	Program program.NewProgram
}

// ExecuteCreateProgram creates a program owned by the calling trainer.
// PRE: input.Session is authenticated
// POST: Returns the stored program, or a BadRequest AppError for invalid input
func ExecuteCreateProgram(ctx context.Context, input CreateProgramInput, deps ProgramDeps) (program.WorkoutProgram, error) {
	if err := input.Program.Validate(); err != nil {
		return program.WorkoutProgram{}, apperror.BadRequest(err.Error())
	}

	created, err := deps.Programs.Create(ctx, input.Session.Token, input.Program)
	if err != nil {
		return program.WorkoutProgram{}, asAppError(err)
	}
	slog.Info("program_event", "event", "program_created", "by", input.Session.User.Email, "program_id", created.WorkoutProgramID)
	return created, nil
}

// UpdateProgramInput carries input for UpdateProgram.
type UpdateProgramInput struct {
	Session account.Session
	Update  program.ProgramUpdate
}

// ExecuteUpdateProgram replaces a program's fields.
// A missing trainer id defaults to the caller.
// PRE: input.Update.WorkoutProgramID identifies the program
// POST: The backend holds the new fields
func ExecuteUpdateProgram(ctx context.Context, input UpdateProgramInput, deps ProgramDeps) error {
	u := input.Update
	if u.PersonalTrainerID == 0 {
		u.PersonalTrainerID = input.Session.User.UserID
	}
	if err := u.Validate(); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if err := deps.Programs.Update(ctx, input.Session.Token, u); err != nil {
		return asAppError(err)
	}
	return nil
}

// DeleteProgramInput carries input for DeleteProgram.
type DeleteProgramInput struct {
	Session   account.Session
	ProgramID int64
}

// ExecuteDeleteProgram removes a program and its exercise workspace.
// POST: On success the program is gone from the backend and from memory
func ExecuteDeleteProgram(ctx context.Context, input DeleteProgramInput, deps ProgramDeps) error {
	if err := deps.Programs.Delete(ctx, input.Session.Token, input.ProgramID); err != nil {
		return asAppError(err)
	}
	if deps.Workspaces != nil {
		deps.Workspaces.Drop(input.Session.Token, input.ProgramID)
	}
	slog.Info("program_event", "event", "program_deleted", "by", input.Session.User.Email, "program_id", input.ProgramID)
	return nil
}
