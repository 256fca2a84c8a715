package projections

import (
	"context"

	"fitdash/internal/domain/account"
	"fitdash/internal/domain/program"
)

// UserLister lists every user the caller may see.
type UserLister interface {
	List(ctx context.Context, token string) ([]account.UserProfile, error)
}

// ClientLister lists the calling trainer's clients.
type ClientLister interface {
	ListClients(ctx context.Context, token string) ([]account.UserProfile, error)
}

// TrainerGetter returns the calling client's trainer.
type TrainerGetter interface {
	GetTrainer(ctx context.Context, token string) (account.UserProfile, error)
}

// TrainerProgramLister lists the calling trainer's programs.
type TrainerProgramLister interface {
	ListForTrainer(ctx context.Context, token string) ([]program.WorkoutProgram, error)
}

// ProgramLister lists the programs visible to the caller.
type ProgramLister interface {
	List(ctx context.Context, token string) ([]program.WorkoutProgram, error)
}

// ProgramGetter returns a single program with its exercises.
type ProgramGetter interface {
	GetByID(ctx context.Context, token string, id int64) (program.WorkoutProgram, error)
}
