package exercise

import (
	"context"

	"fitdash/internal/domain/program"
)

// Store reads and writes exercises through the backend API.
type Store interface {
	GetByID(ctx context.Context, token string, id int64) (program.Exercise, error)
	AddToProgram(ctx context.Context, token string, programID int64, in program.ExerciseInput) (program.Exercise, error)
	Update(ctx context.Context, token string, u program.ExerciseUpdate) error
	Delete(ctx context.Context, token string, id int64) error
}
