package orchestrators

import (
	"context"

	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// ExerciseStoreForEdit defines the store interface needed to edit a standalone exercise.
type ExerciseStoreForEdit interface {
	GetByID(ctx context.Context, token string, id int64) (program.Exercise, error)
	Update(ctx context.Context, token string, u program.ExerciseUpdate) error
	Delete(ctx context.Context, token string, id int64) error
}

// ExerciseDeps holds dependencies for the standalone exercise orchestrators.
type ExerciseDeps struct {
	Exercises ExerciseStoreForEdit
}

// UpdateExerciseInput carries input for UpdateExercise.
type UpdateExerciseInput struct {
	Token      string
	ExerciseID int64
	Exercise   program.ExerciseInput
}

// ExecuteUpdateExercise updates an exercise outside any program workspace.
// The current row is read first so its program and trainer ids are preserved.
// PRE: input.Exercise came from ParseExerciseForm or an equivalent decoder
// POST: Returns the exercise as it now stands
func ExecuteUpdateExercise(ctx context.Context, input UpdateExerciseInput, deps ExerciseDeps) (program.Exercise, error) {
	if err := input.Exercise.Validate(); err != nil {
		return program.Exercise{}, apperror.BadRequest(err.Error())
	}

	current, err := deps.Exercises.GetByID(ctx, input.Token, input.ExerciseID)
	if err != nil {
		return program.Exercise{}, asAppError(err)
	}

	u := input.Exercise.UpdateFor(current, 0)
	if err := deps.Exercises.Update(ctx, input.Token, u); err != nil {
		return program.Exercise{}, asAppError(err)
	}
	return u.Apply(current), nil
}

// ExecuteDeleteExercise deletes an exercise outside any program workspace.
func ExecuteDeleteExercise(ctx context.Context, token string, exerciseID int64, deps ExerciseDeps) error {
	if err := deps.Exercises.Delete(ctx, token, exerciseID); err != nil {
		return asAppError(err)
	}
	return nil
}
