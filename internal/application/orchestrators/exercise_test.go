package orchestrators

import (
	"context"
	"testing"

	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

type mockExerciseStoreForEdit struct {
	rows    map[int64]program.Exercise
	updates []program.ExerciseUpdate
	deleted []int64
	err     error
}

// GetByID implements ExerciseStoreForEdit.
// PRE: id > 0
// POST: Returns the seeded row or NotFound
func (m *mockExerciseStoreForEdit) GetByID(_ context.Context, _ string, id int64) (program.Exercise, error) {
	e, ok := m.rows[id]
	if !ok {
		return program.Exercise{}, apperror.NotFound("Exercise not found")
	}
	return e, nil
}

// Update implements ExerciseStoreForEdit.
// PRE: u.ExerciseID > 0
// POST: Records u
func (m *mockExerciseStoreForEdit) Update(_ context.Context, _ string, u program.ExerciseUpdate) error {
	if m.err != nil {
		return m.err
	}
	m.updates = append(m.updates, u)
	return nil
}

// Delete implements ExerciseStoreForEdit.
// PRE: id > 0
// POST: Records id
func (m *mockExerciseStoreForEdit) Delete(_ context.Context, _ string, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestExecuteUpdateExercise_PreservesOwnership(t *testing.T) {
	store := &mockExerciseStoreForEdit{rows: map[int64]program.Exercise{
		9: {ExerciseID: 9, Name: ptr("Squat"), WorkoutProgramID: ptr(int64(4)), PersonalTrainerID: ptr(int64(7))},
	}}

	got, err := ExecuteUpdateExercise(context.Background(), UpdateExerciseInput{
		Token:      "tok",
		ExerciseID: 9,
		Exercise:   program.ExerciseInput{Name: "Front squat", Sets: 3, Repetitions: 5, Time: "0"},
	}, ExerciseDeps{Exercises: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := store.updates[0]
	if u.WorkoutProgramID == nil || *u.WorkoutProgramID != 4 {
		t.Errorf("expected program 4, got %v", u.WorkoutProgramID)
	}
	if u.PersonalTrainerID == nil || *u.PersonalTrainerID != 7 {
		t.Errorf("expected trainer 7, got %v", u.PersonalTrainerID)
	}
	if *got.Name != "Front squat" || *got.Sets != 3 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestExecuteUpdateExercise_Missing(t *testing.T) {
	store := &mockExerciseStoreForEdit{rows: map[int64]program.Exercise{}}
	_, err := ExecuteUpdateExercise(context.Background(), UpdateExerciseInput{
		Token:      "tok",
		ExerciseID: 9,
		Exercise:   program.ExerciseInput{Name: "Squat"},
	}, ExerciseDeps{Exercises: store})
	requireKind(t, err, apperror.KindNotFound)
	if len(store.updates) != 0 {
		t.Error("expected no update")
	}
}

func TestExecuteUpdateExercise_InvalidInput(t *testing.T) {
	store := &mockExerciseStoreForEdit{}
	_, err := ExecuteUpdateExercise(context.Background(), UpdateExerciseInput{
		Token:      "tok",
		ExerciseID: 9,
		Exercise:   program.ExerciseInput{Name: ""},
	}, ExerciseDeps{Exercises: store})
	requireKind(t, err, apperror.KindBadRequest)
}

func TestExecuteDeleteExercise(t *testing.T) {
	store := &mockExerciseStoreForEdit{}
	if err := ExecuteDeleteExercise(context.Background(), "tok", 9, ExerciseDeps{Exercises: store}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 9 {
		t.Errorf("expected 9 deleted, got %v", store.deleted)
	}
}
