package exercise

import (
	"context"
	"strconv"

	"fitdash/internal/adapters/backend"
	"fitdash/internal/domain/program"
)

// APIStore implements Store against the backend's /api/Exercises endpoints.
type APIStore struct {
	client *backend.Client
}

// Compile-time check that *APIStore satisfies Store.
var _ Store = (*APIStore)(nil)

// NewAPIStore creates a new exercise store.
func NewAPIStore(client *backend.Client) *APIStore {
	return &APIStore{client: client}
}

// GetByID returns one exercise.
func (s *APIStore) GetByID(ctx context.Context, token string, id int64) (program.Exercise, error) {
	return backend.Get[program.Exercise](ctx, s.client, exercisePath(id), token)
}

// AddToProgram creates an exercise attached to a program.
// PRE: in has been validated
// POST: Returns the exercise as stored by the backend, with its new id
func (s *APIStore) AddToProgram(ctx context.Context, token string, programID int64, in program.ExerciseInput) (program.Exercise, error) {
	return backend.Post[program.Exercise](ctx, s.client, "/api/Exercises/Program/"+strconv.FormatInt(programID, 10), in, token)
}

// Update replaces an exercise's fields.
func (s *APIStore) Update(ctx context.Context, token string, u program.ExerciseUpdate) error {
	_, err := backend.Put[any](ctx, s.client, exercisePath(u.ExerciseID), u, token)
	return err
}

// Delete removes an exercise.
func (s *APIStore) Delete(ctx context.Context, token string, id int64) error {
	_, err := backend.Delete[any](ctx, s.client, exercisePath(id), token)
	return err
}

func exercisePath(id int64) string {
	return "/api/Exercises/" + strconv.FormatInt(id, 10)
}
