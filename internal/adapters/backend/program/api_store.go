package program

import (
	"context"
	"strconv"

	"fitdash/internal/adapters/backend"
	domain "fitdash/internal/domain/program"
)

// APIStore implements Store against the backend's /api/WorkoutPrograms endpoints.
type APIStore struct {
	client *backend.Client
}

// Compile-time check that *APIStore satisfies Store.
var _ Store = (*APIStore)(nil)

// NewAPIStore creates a new program store.
func NewAPIStore(client *backend.Client) *APIStore {
	return &APIStore{client: client}
}

// ListForTrainer returns the programs owned by the calling trainer.
func (s *APIStore) ListForTrainer(ctx context.Context, token string) ([]domain.WorkoutProgram, error) {
	return backend.Get[[]domain.WorkoutProgram](ctx, s.client, "/api/WorkoutPrograms/trainer", token)
}

// List returns every program the caller may see. For a client that is their own programs.
func (s *APIStore) List(ctx context.Context, token string) ([]domain.WorkoutProgram, error) {
	return backend.Get[[]domain.WorkoutProgram](ctx, s.client, "/api/WorkoutPrograms", token)
}

// GetByID returns a program with its exercises.
// POST: Returns the program or a NotFound AppError
func (s *APIStore) GetByID(ctx context.Context, token string, id int64) (domain.WorkoutProgram, error) {
	return backend.Get[domain.WorkoutProgram](ctx, s.client, programPath(id), token)
}

// Create persists a new program owned by the calling trainer.
// PRE: p has been validated
func (s *APIStore) Create(ctx context.Context, token string, p domain.NewProgram) (domain.WorkoutProgram, error) {
	return backend.Post[domain.WorkoutProgram](ctx, s.client, "/api/WorkoutPrograms", p, token)
}

// Update replaces a program's fields.
// PRE: u has been validated
func (s *APIStore) Update(ctx context.Context, token string, u domain.ProgramUpdate) error {
	_, err := backend.Put[any](ctx, s.client, programPath(u.WorkoutProgramID), u, token)
	return err
}

// Delete removes a program.
func (s *APIStore) Delete(ctx context.Context, token string, id int64) error {
	_, err := backend.Delete[any](ctx, s.client, programPath(id), token)
	return err
}

func programPath(id int64) string {
	return "/api/WorkoutPrograms/" + strconv.FormatInt(id, 10)
}
