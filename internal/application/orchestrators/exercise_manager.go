package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fitdash/internal/adapters/http/requestid"
	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/exerciselist"
	"fitdash/internal/domain/program"
)

// DefaultWorkspaceIdle is how long an unused exercise workspace is kept.
const DefaultWorkspaceIdle = 30 * time.Minute

// ExerciseStoreForManager defines the store interface needed by ExerciseManager.
type ExerciseStoreForManager interface {
	AddToProgram(ctx context.Context, token string, programID int64, in program.ExerciseInput) (program.Exercise, error)
	Update(ctx context.Context, token string, u program.ExerciseUpdate) error
	Delete(ctx context.Context, token string, id int64) error
}

// ExerciseManager edits one program's exercises on behalf of one credential.
// Add and Update reach the backend before local state changes; Delete changes
// local state whatever the backend answers.
// Safe for concurrent use.
type ExerciseManager struct {
	mu        sync.Mutex
	programID int64
	token     string
	store     ExerciseStoreForManager
	list      *exerciselist.List
}

// NewExerciseManager creates a manager whose first server snapshot is initial.
func NewExerciseManager(programID int64, token string, store ExerciseStoreForManager, initial []program.Exercise) *ExerciseManager {
	return &ExerciseManager{
		programID: programID,
		token:     token,
		store:     store,
		list:      exerciselist.New(initial),
	}
}

// ProgramID returns the program this manager edits.
func (m *ExerciseManager) ProgramID() int64 {
	return m.programID
}

// Sync offers a fresh server snapshot. Returns true when local state was replaced.
func (m *ExerciseManager) Sync(snapshot []program.Exercise) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Sync(snapshot)
}

// Items returns the exercises as the caller should see them.
func (m *ExerciseManager) Items() []program.Exercise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Items()
}

// Pending reports whether a local change is waiting for the next snapshot.
func (m *ExerciseManager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Pending()
}

// Add creates an exercise in the program.
// PRE: in came from ParseExerciseForm or an equivalent decoder
// POST: On success the created exercise is appended locally; on failure local state is unchanged
func (m *ExerciseManager) Add(ctx context.Context, in program.ExerciseInput) (program.Exercise, error) {
	if err := in.Validate(); err != nil {
		return program.Exercise{}, apperror.BadRequest(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created, err := m.store.AddToProgram(ctx, m.token, m.programID, in)
	if err != nil {
		return program.Exercise{}, asAppError(err)
	}
	m.list.Add(created)
	return created, nil
}

// Update changes an exercise already in the program.
// POST: On success the local row carries the new fields; on failure local state is unchanged
func (m *ExerciseManager) Update(ctx context.Context, exerciseID int64, in program.ExerciseInput) (program.Exercise, error) {
	if err := in.Validate(); err != nil {
		return program.Exercise{}, apperror.BadRequest(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.list.Get(exerciseID)
	if !ok {
		return program.Exercise{}, apperror.NotFound(program.ErrExerciseMissing.Error())
	}

	u := in.UpdateFor(current, m.programID)
	if err := m.store.Update(ctx, m.token, u); err != nil {
		return program.Exercise{}, asAppError(err)
	}

	updated := u.Apply(current)
	m.list.Replace(updated)
	return updated, nil
}

// Delete removes an exercise. The local row is removed even when the backend
// call fails; confirmed reports whether the backend accepted the delete.
// err is only set when the backend rejected the credential, so the caller can end the session.
// POST: The exercise is absent from Items
func (m *ExerciseManager) Delete(ctx context.Context, exerciseID int64) (confirmed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	callErr := m.store.Delete(ctx, m.token, exerciseID)
	m.list.Remove(exerciseID)

	if callErr == nil {
		return true, nil
	}
	slog.Warn("exercise_delete_failed",
		"request_id", requestid.FromContext(ctx),
		"program_id", m.programID,
		"exercise_id", exerciseID,
		"error", callErr,
	)
	if apperror.IsUnauthorized(callErr) {
		return false, callErr
	}
	return false, nil
}

type workspaceKey struct {
	token     string
	programID int64
}

type workspace struct {
	manager  *ExerciseManager
	lastUsed time.Time
}

// ExerciseManagers keeps exercise managers alive between requests,
// one per (credential, program) pair. Idle managers expire.
// Safe for concurrent use.
type ExerciseManagers struct {
	mu      sync.Mutex
	entries map[workspaceKey]*workspace
	store   ExerciseStoreForManager
	idle    time.Duration
	now     func() time.Time
}

// NewExerciseManagers creates an empty registry. idle <= 0 uses DefaultWorkspaceIdle.
func NewExerciseManagers(store ExerciseStoreForManager, idle time.Duration) *ExerciseManagers {
	if idle <= 0 {
		idle = DefaultWorkspaceIdle
	}
	return &ExerciseManagers{
		entries: make(map[workspaceKey]*workspace),
		store:   store,
		idle:    idle,
		now:     time.Now,
	}
}

// Open returns the manager for a program and offers it the snapshot just read
// from the backend. A new manager starts from the snapshot.
// PRE: snapshot is the program's current exercises as returned by the backend
func (r *ExerciseManagers) Open(token string, programID int64, snapshot []program.Exercise) *ExerciseManager {
	r.mu.Lock()
	r.expireLocked()
	key := workspaceKey{token: token, programID: programID}
	ws, ok := r.entries[key]
	if !ok {
		ws = &workspace{manager: NewExerciseManager(programID, token, r.store, snapshot)}
		r.entries[key] = ws
	}
	ws.lastUsed = r.now()
	r.mu.Unlock()

	if ok {
		ws.manager.Sync(snapshot)
	}
	return ws.manager
}

// Get returns the manager for a program without syncing it. When none exists,
// load supplies the initial snapshot.
func (r *ExerciseManagers) Get(ctx context.Context, token string, programID int64, load func(ctx context.Context) ([]program.Exercise, error)) (*ExerciseManager, error) {
	key := workspaceKey{token: token, programID: programID}

	r.mu.Lock()
	r.expireLocked()
	if ws, ok := r.entries[key]; ok {
		ws.lastUsed = r.now()
		r.mu.Unlock()
		return ws.manager, nil
	}
	r.mu.Unlock()

	snapshot, err := load(ctx)
	if err != nil {
		return nil, asAppError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have created it while we were loading.
	ws, ok := r.entries[key]
	if !ok {
		ws = &workspace{manager: NewExerciseManager(programID, token, r.store, snapshot)}
		r.entries[key] = ws
	}
	ws.lastUsed = r.now()
	return ws.manager, nil
}

// Drop discards the manager for one program.
func (r *ExerciseManagers) Drop(token string, programID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, workspaceKey{token: token, programID: programID})
}

// Forget discards every manager bound to a credential.
func (r *ExerciseManagers) Forget(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if key.token == token {
			delete(r.entries, key)
		}
	}
}

// Len returns the number of live managers.
func (r *ExerciseManagers) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	return len(r.entries)
}

func (r *ExerciseManagers) expireLocked() {
	cutoff := r.now().Add(-r.idle)
	for key, ws := range r.entries {
		if ws.lastUsed.Before(cutoff) {
			delete(r.entries, key)
		}
	}
}
