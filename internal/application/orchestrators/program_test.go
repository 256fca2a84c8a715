package orchestrators

import (
	"context"
	"testing"

	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

type mockProgramStoreForWrite struct {
	created []program.NewProgram
	updated []program.ProgramUpdate
	deleted []int64
	err     error
}

// Create implements ProgramStoreForWrite.
// PRE: p is valid
// POST: Records p and returns it with an id
func (m *mockProgramStoreForWrite) Create(_ context.Context, _ string, p program.NewProgram) (program.WorkoutProgram, error) {
	if m.err != nil {
		return program.WorkoutProgram{}, m.err
	}
	m.created = append(m.created, p)
	name := p.Name
	return program.WorkoutProgram{WorkoutProgramID: 42, Name: &name, ClientID: p.ClientID}, nil
}

// Update implements ProgramStoreForWrite.
// PRE: u is valid
// POST: Records u
func (m *mockProgramStoreForWrite) Update(_ context.Context, _ string, u program.ProgramUpdate) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, u)
	return nil
}

// Delete implements ProgramStoreForWrite.
// PRE: id > 0
// POST: Records id
func (m *mockProgramStoreForWrite) Delete(_ context.Context, _ string, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockWorkspaceDropper struct {
	dropped []int64
}

// Drop implements WorkspaceDropper.
// PRE: none
// POST: programID is recorded
func (m *mockWorkspaceDropper) Drop(_ string, programID int64) {
	m.dropped = append(m.dropped, programID)
}

func TestExecuteCreateProgram_Valid(t *testing.T) {
	store := &mockProgramStoreForWrite{}
	created, err := ExecuteCreateProgram(context.Background(), CreateProgramInput{
		Session: trainerSession(),
		Program: program.NewProgram{Name: "Leg day", Description: "Squats"},
	}, ProgramDeps{Programs: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.WorkoutProgramID != 42 || created.DisplayName() != "Leg day" {
		t.Errorf("unexpected program: %+v", created)
	}
}

func TestExecuteCreateProgram_EmptyName(t *testing.T) {
	store := &mockProgramStoreForWrite{}
	_, err := ExecuteCreateProgram(context.Background(), CreateProgramInput{
		Session: trainerSession(),
		Program: program.NewProgram{Name: "  "},
	}, ProgramDeps{Programs: store})
	requireKind(t, err, apperror.KindBadRequest)
	if len(store.created) != 0 {
		t.Error("expected no backend call")
	}
}

func TestExecuteUpdateProgram_DefaultsTrainerToCaller(t *testing.T) {
	store := &mockProgramStoreForWrite{}
	err := ExecuteUpdateProgram(context.Background(), UpdateProgramInput{
		Session: trainerSession(),
		Update:  program.ProgramUpdate{WorkoutProgramID: 5, Name: "Push"},
	}, ProgramDeps{Programs: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updated[0].PersonalTrainerID != 7 {
		t.Errorf("expected trainer 7, got %d", store.updated[0].PersonalTrainerID)
	}
}

func TestExecuteUpdateProgram_KeepsExplicitTrainer(t *testing.T) {
	store := &mockProgramStoreForWrite{}
	err := ExecuteUpdateProgram(context.Background(), UpdateProgramInput{
		Session: trainerSession(),
		Update:  program.ProgramUpdate{WorkoutProgramID: 5, Name: "Push", PersonalTrainerID: 3},
	}, ProgramDeps{Programs: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updated[0].PersonalTrainerID != 3 {
		t.Errorf("expected trainer 3, got %d", store.updated[0].PersonalTrainerID)
	}
}

func TestExecuteUpdateProgram_MissingID(t *testing.T) {
	err := ExecuteUpdateProgram(context.Background(), UpdateProgramInput{
		Session: trainerSession(),
		Update:  program.ProgramUpdate{Name: "Push"},
	}, ProgramDeps{Programs: &mockProgramStoreForWrite{}})
	requireKind(t, err, apperror.KindBadRequest)
}

func TestExecuteDeleteProgram_DropsWorkspace(t *testing.T) {
	store := &mockProgramStoreForWrite{}
	workspaces := &mockWorkspaceDropper{}
	err := ExecuteDeleteProgram(context.Background(), DeleteProgramInput{Session: trainerSession(), ProgramID: 5}, ProgramDeps{
		Programs:   store,
		Workspaces: workspaces,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Errorf("expected program 5 deleted, got %v", store.deleted)
	}
	if len(workspaces.dropped) != 1 || workspaces.dropped[0] != 5 {
		t.Errorf("expected workspace 5 dropped, got %v", workspaces.dropped)
	}
}

func TestExecuteDeleteProgram_BackendErrorKeepsWorkspace(t *testing.T) {
	store := &mockProgramStoreForWrite{err: apperror.NotFound("Program not found")}
	workspaces := &mockWorkspaceDropper{}
	err := ExecuteDeleteProgram(context.Background(), DeleteProgramInput{Session: trainerSession(), ProgramID: 5}, ProgramDeps{
		Programs:   store,
		Workspaces: workspaces,
	})
	requireKind(t, err, apperror.KindNotFound)
	if len(workspaces.dropped) != 0 {
		t.Error("expected workspace kept")
	}
}
