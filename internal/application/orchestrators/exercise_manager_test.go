package orchestrators

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// mockExerciseStoreForManager implements ExerciseStoreForManager for testing.
type mockExerciseStoreForManager struct {
	mu        sync.Mutex
	nextID    int64
	addErr    error
	updateErr error
	deleteErr error
	updates   []program.ExerciseUpdate
	deletes   []int64
}

// AddToProgram implements ExerciseStoreForManager.
// PRE: in is valid
// POST: Returns a new exercise with the next id, or addErr
func (m *mockExerciseStoreForManager) AddToProgram(_ context.Context, _ string, programID int64, in program.ExerciseInput) (program.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return program.Exercise{}, m.addErr
	}
	m.nextID++
	name := in.Name
	return program.Exercise{ExerciseID: 100 + m.nextID, Name: &name, WorkoutProgramID: &programID}, nil
}

// Update implements ExerciseStoreForManager.
// PRE: u.ExerciseID > 0
// POST: Records u, or returns updateErr
func (m *mockExerciseStoreForManager) Update(_ context.Context, _ string, u program.ExerciseUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, u)
	return nil
}

// Delete implements ExerciseStoreForManager.
// PRE: id > 0
// POST: Records id and returns deleteErr
func (m *mockExerciseStoreForManager) Delete(_ context.Context, _ string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	return m.deleteErr
}

func exercise(id int64, name string) program.Exercise {
	return program.Exercise{ExerciseID: id, Name: &name}
}

func itemIDs(items []program.Exercise) []int64 {
	ids := make([]int64, len(items))
	for i, e := range items {
		ids[i] = e.ExerciseID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- ExerciseManager tests ---

func TestExerciseManager_AddAppendsAfterBackendSuccess(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	created, err := m.Add(context.Background(), program.ExerciseInput{Name: "Lunge", Time: "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := itemIDs(m.Items()); !equalIDs(got, []int64{1, created.ExerciseID}) {
		t.Errorf("unexpected items: %v", got)
	}
	if !m.Pending() {
		t.Error("expected pending local mutation")
	}
}

func TestExerciseManager_AddFailureLeavesStateUntouched(t *testing.T) {
	store := &mockExerciseStoreForManager{addErr: apperror.ServerFailure("boom")}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	_, err := m.Add(context.Background(), program.ExerciseInput{Name: "Lunge"})
	requireKind(t, err, apperror.KindServerFailure)
	if got := itemIDs(m.Items()); !equalIDs(got, []int64{1}) {
		t.Errorf("expected untouched items, got %v", got)
	}
	if m.Pending() {
		t.Error("expected no pending mutation")
	}
}

func TestExerciseManager_AddInvalidInput(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, nil)
	_, err := m.Add(context.Background(), program.ExerciseInput{Name: " "})
	requireKind(t, err, apperror.KindBadRequest)
}

func TestExerciseManager_UpdateReplacesRow(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat"), exercise(2, "Row")})

	updated, err := m.Update(context.Background(), 2, program.ExerciseInput{Name: "Bent row", Sets: 4, Repetitions: 8, Time: "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *updated.Name != "Bent row" {
		t.Errorf("expected new name, got %s", *updated.Name)
	}
	u := store.updates[0]
	if u.WorkoutProgramID == nil || *u.WorkoutProgramID != 4 {
		t.Errorf("expected program id 4 sent, got %v", u.WorkoutProgramID)
	}
	items := m.Items()
	if *items[1].Name != "Bent row" || *items[1].Sets != 4 {
		t.Errorf("expected local row updated, got %+v", items[1])
	}
}

func TestExerciseManager_UpdateFailureLeavesStateUntouched(t *testing.T) {
	store := &mockExerciseStoreForManager{updateErr: apperror.BadRequest("bad")}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	_, err := m.Update(context.Background(), 1, program.ExerciseInput{Name: "Deep squat"})
	requireKind(t, err, apperror.KindBadRequest)
	if *m.Items()[0].Name != "Squat" {
		t.Error("expected local row unchanged")
	}
	if m.Pending() {
		t.Error("expected no pending mutation")
	}
}

func TestExerciseManager_UpdateUnknownExercise(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	_, err := m.Update(context.Background(), 9, program.ExerciseInput{Name: "Deep squat"})
	requireKind(t, err, apperror.KindNotFound)
	if len(store.updates) != 0 {
		t.Error("expected no backend call")
	}
}

func TestExerciseManager_DeleteRemovesEvenOnFailure(t *testing.T) {
	store := &mockExerciseStoreForManager{deleteErr: apperror.ServerFailure("boom")}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat"), exercise(2, "Row")})

	confirmed, err := m.Delete(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed {
		t.Error("expected unconfirmed delete")
	}
	if got := itemIDs(m.Items()); !equalIDs(got, []int64{1}) {
		t.Errorf("expected row removed, got %v", got)
	}
}

func TestExerciseManager_DeleteNetworkFailureStillRemoves(t *testing.T) {
	store := &mockExerciseStoreForManager{deleteErr: apperror.NetworkFailure(errors.New("refused"))}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	confirmed, err := m.Delete(context.Background(), 1)
	if err != nil || confirmed {
		t.Fatalf("expected (false, nil), got (%v, %v)", confirmed, err)
	}
	if len(m.Items()) != 0 {
		t.Error("expected row removed")
	}
}

func TestExerciseManager_DeleteUnauthorizedReportsError(t *testing.T) {
	store := &mockExerciseStoreForManager{deleteErr: apperror.Unauthorized("expired")}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	_, err := m.Delete(context.Background(), 1)
	requireKind(t, err, apperror.KindUnauthorized)
	if len(m.Items()) != 0 {
		t.Error("expected row removed")
	}
}

func TestExerciseManager_DeleteConfirmed(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "Squat")})

	confirmed, err := m.Delete(context.Background(), 1)
	if err != nil || !confirmed {
		t.Fatalf("expected (true, nil), got (%v, %v)", confirmed, err)
	}
}

func TestExerciseManager_StaleSnapshotAfterDeleteIsIgnored(t *testing.T) {
	store := &mockExerciseStoreForManager{}
	m := NewExerciseManager(4, "tok", store, []program.Exercise{exercise(1, "A"), exercise(2, "B")})

	if _, err := m.Delete(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Sync([]program.Exercise{exercise(1, "A"), exercise(2, "B")}) {
		t.Error("expected stale snapshot to be skipped")
	}
	if got := itemIDs(m.Items()); !equalIDs(got, []int64{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	m.Sync([]program.Exercise{exercise(1, "A")})
	if got := itemIDs(m.Items()); !equalIDs(got, []int64{1}) {
		t.Errorf("expected [1], got %v", got)
	}
}

// --- ExerciseManagers tests ---

func loadNone(context.Context) ([]program.Exercise, error) { return nil, nil }

func TestExerciseManagers_OpenReusesAndSyncs(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)

	m1 := r.Open("tok", 4, []program.Exercise{exercise(1, "A")})
	m2 := r.Open("tok", 4, []program.Exercise{exercise(1, "A"), exercise(2, "B")})
	if m1 != m2 {
		t.Fatal("expected the same manager for the same credential and program")
	}
	if got := itemIDs(m2.Items()); !equalIDs(got, []int64{1, 2}) {
		t.Errorf("expected snapshot accepted, got %v", got)
	}
	if r.Open("other", 4, nil) == m1 {
		t.Error("expected a separate manager per credential")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 managers, got %d", r.Len())
	}
}

func TestExerciseManagers_GetLoadsOnce(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)
	loads := 0
	load := func(context.Context) ([]program.Exercise, error) {
		loads++
		return []program.Exercise{exercise(1, "A")}, nil
	}

	m1, err := r.Get(context.Background(), "tok", 4, load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := r.Get(context.Background(), "tok", 4, load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m1 != m2 || loads != 1 {
		t.Errorf("expected one load and one manager, got %d loads", loads)
	}
	if got := itemIDs(m1.Items()); !equalIDs(got, []int64{1}) {
		t.Errorf("expected loaded items, got %v", got)
	}
}

func TestExerciseManagers_GetLoadError(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)
	_, err := r.Get(context.Background(), "tok", 4, func(context.Context) ([]program.Exercise, error) {
		return nil, apperror.Unauthorized("expired")
	})
	requireKind(t, err, apperror.KindUnauthorized)
	if r.Len() != 0 {
		t.Error("expected no manager registered")
	}
}

func TestExerciseManagers_ForgetAndDrop(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)
	r.Open("tok", 1, nil)
	r.Open("tok", 2, nil)
	r.Open("other", 1, nil)

	r.Drop("tok", 1)
	if r.Len() != 2 {
		t.Errorf("expected 2 after drop, got %d", r.Len())
	}
	r.Forget("tok")
	if r.Len() != 1 {
		t.Errorf("expected 1 after forget, got %d", r.Len())
	}
}

func TestExerciseManagers_IdleExpiry(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	first, _ := r.Get(context.Background(), "tok", 4, loadNone)
	now = now.Add(30 * time.Second)
	if r.Len() != 1 {
		t.Fatal("expected manager alive within idle window")
	}

	now = now.Add(2 * time.Minute)
	if r.Len() != 0 {
		t.Fatal("expected idle manager expired")
	}
	second, _ := r.Get(context.Background(), "tok", 4, loadNone)
	if first == second {
		t.Error("expected a fresh manager after expiry")
	}
}

func TestExerciseManagers_DefaultIdle(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, 0)
	if r.idle != DefaultWorkspaceIdle {
		t.Errorf("expected default idle, got %v", r.idle)
	}
}

func TestExerciseManagers_ConcurrentGet(t *testing.T) {
	r := NewExerciseManagers(&mockExerciseStoreForManager{}, time.Minute)
	var wg sync.WaitGroup
	managers := make([]*ExerciseManager, 8)
	for i := range managers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := r.Get(context.Background(), "tok", 4, loadNone)
			if err == nil {
				managers[i] = m
			}
		}(i)
	}
	wg.Wait()
	for _, m := range managers {
		if m != managers[0] {
			t.Fatal("expected every caller to share one manager")
		}
	}
}
