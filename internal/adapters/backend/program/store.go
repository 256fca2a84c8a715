package program

import (
	"context"

	domain "fitdash/internal/domain/program"
)

// Store reads and writes workout programs through the backend API.
type Store interface {
	ListForTrainer(ctx context.Context, token string) ([]domain.WorkoutProgram, error)
	List(ctx context.Context, token string) ([]domain.WorkoutProgram, error)
	GetByID(ctx context.Context, token string, id int64) (domain.WorkoutProgram, error)
	Create(ctx context.Context, token string, p domain.NewProgram) (domain.WorkoutProgram, error)
	Update(ctx context.Context, token string, u domain.ProgramUpdate) error
	Delete(ctx context.Context, token string, id int64) error
}
