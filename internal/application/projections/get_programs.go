package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fitdash/internal/domain/account"
	"fitdash/internal/domain/program"
)

// ProgramsListResult carries the trainer's programs with client names resolved.
type ProgramsListResult struct {
	Programs []ProgramRow
	Clients  []account.UserProfile
}

// ProgramRow is one line of the trainer's program list.
type ProgramRow struct {
	Program    program.WorkoutProgram
	ClientName string // empty when unassigned or the client is not the caller's
}

// ProgramsDeps holds dependencies for the trainer program queries.
type ProgramsDeps struct {
	Programs interface {
		TrainerProgramLister
		ProgramGetter
	}
	Clients ClientLister
}

// QueryListPrograms returns the trainer's programs and clients fetched concurrently.
// PRE: token belongs to a trainer
func QueryListPrograms(ctx context.Context, token string, deps ProgramsDeps) (ProgramsListResult, error) {
	var (
		programs []program.WorkoutProgram
		clients  []account.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		programs, err = deps.Programs.ListForTrainer(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = deps.Clients.ListClients(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProgramsListResult{}, err
	}

	rows := make([]ProgramRow, 0, len(programs))
	for _, p := range programs {
		row := ProgramRow{Program: p}
		if c, ok := assignedClient(p, clients); ok {
			row.ClientName = c.FullName()
		}
		rows = append(rows, row)
	}
	return ProgramsListResult{Programs: rows, Clients: clients}, nil
}

// ProgramDetailsResult carries a program, the trainer's clients and the assigned client.
type ProgramDetailsResult struct {
	Program        program.WorkoutProgram
	Clients        []account.UserProfile
	AssignedClient *account.UserProfile
}

// QueryGetProgramDetails fetches a program and the trainer's clients concurrently.
// PRE: token belongs to a trainer
// POST: AssignedClient is set when the program's client is among the trainer's clients
func QueryGetProgramDetails(ctx context.Context, token string, programID int64, deps ProgramsDeps) (ProgramDetailsResult, error) {
	var result ProgramDetailsResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := deps.Programs.GetByID(gctx, token, programID)
		result.Program = p
		return err
	})
	g.Go(func() error {
		clients, err := deps.Clients.ListClients(gctx, token)
		result.Clients = clients
		return err
	})
	if err := g.Wait(); err != nil {
		return ProgramDetailsResult{}, err
	}

	if c, ok := assignedClient(result.Program, result.Clients); ok {
		result.AssignedClient = &c
	}
	return result, nil
}

// QueryGetClientProgram returns a single program for the client view.
func QueryGetClientProgram(ctx context.Context, token string, programID int64, programs ProgramGetter) (program.WorkoutProgram, error) {
	return programs.GetByID(ctx, token, programID)
}

func assignedClient(p program.WorkoutProgram, clients []account.UserProfile) (account.UserProfile, bool) {
	if p.ClientID == nil {
		return account.UserProfile{}, false
	}
	for _, c := range clients {
		if p.IsAssignedTo(c.UserID) {
			return c, true
		}
	}
	return account.UserProfile{}, false
}
