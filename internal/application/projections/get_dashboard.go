package projections

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
	"fitdash/internal/domain/program"
)

// DashboardStats counts users per role.
type DashboardStats struct {
	Trainers int `json:"trainers"`
	Clients  int `json:"clients"`
	Total    int `json:"total"`
}

// ManagerDashboardResult carries the manager's view of all users.
type ManagerDashboardResult struct {
	Trainers []account.UserProfile `json:"trainers"`
	Clients  []account.UserProfile `json:"clients"`
	Stats    DashboardStats        `json:"stats"`
}

// ManagerDashboardDeps holds dependencies for GetManagerDashboard.
type ManagerDashboardDeps struct {
	Users UserLister
}

// QueryGetManagerDashboard lists all users split into trainers and clients.
// Managers and unknown account types count towards Total only.
// PRE: token belongs to a manager
// POST: Stats match the returned slices
func QueryGetManagerDashboard(ctx context.Context, token string, deps ManagerDashboardDeps) (ManagerDashboardResult, error) {
	users, err := deps.Users.List(ctx, token)
	if err != nil {
		return ManagerDashboardResult{}, err
	}

	result := ManagerDashboardResult{
		Trainers: []account.UserProfile{},
		Clients:  []account.UserProfile{},
	}
	for _, u := range users {
		switch u.Role() {
		case account.RoleTrainer:
			result.Trainers = append(result.Trainers, u)
		case account.RoleClient:
			result.Clients = append(result.Clients, u)
		}
	}
	result.Stats = DashboardStats{
		Trainers: len(result.Trainers),
		Clients:  len(result.Clients),
		Total:    len(users),
	}
	return result, nil
}

// TrainerDashboardResult carries the trainer's clients and programs.
type TrainerDashboardResult struct {
	Clients  []account.UserProfile
	Programs []program.WorkoutProgram
}

// TrainerDashboardDeps holds dependencies for GetTrainerDashboard.
type TrainerDashboardDeps struct {
	Clients  ClientLister
	Programs TrainerProgramLister
}

// QueryGetTrainerDashboard fetches clients and programs concurrently.
// PRE: token belongs to a trainer
// POST: Either both lists are returned or the first error is
func QueryGetTrainerDashboard(ctx context.Context, token string, deps TrainerDashboardDeps) (TrainerDashboardResult, error) {
	var result TrainerDashboardResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients, err := deps.Clients.ListClients(gctx, token)
		result.Clients = clients
		return err
	})
	g.Go(func() error {
		programs, err := deps.Programs.ListForTrainer(gctx, token)
		result.Programs = programs
		return err
	})
	if err := g.Wait(); err != nil {
		return TrainerDashboardResult{}, err
	}
	return result, nil
}

// ClientDashboardResult carries the client's programs and, when known, their trainer.
type ClientDashboardResult struct {
	Programs []program.WorkoutProgram
	Trainer  *account.UserProfile
}

// ClientDashboardDeps holds dependencies for GetClientDashboard.
type ClientDashboardDeps struct {
	Programs ProgramLister
	Trainers TrainerGetter
}

// QueryGetClientDashboard fetches the client's programs and trainer concurrently.
// A failed trainer lookup leaves Trainer nil, except a 401 which ends the session like any other.
// PRE: token belongs to a client
func QueryGetClientDashboard(ctx context.Context, token string, deps ClientDashboardDeps) (ClientDashboardResult, error) {
	var result ClientDashboardResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		programs, err := deps.Programs.List(gctx, token)
		result.Programs = programs
		return err
	})
	g.Go(func() error {
		trainer, err := deps.Trainers.GetTrainer(gctx, token)
		if err == nil {
			result.Trainer = &trainer
			return nil
		}
		if apperror.IsUnauthorized(err) {
			return err
		}
		slog.Debug("trainer_lookup_failed", "error", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ClientDashboardResult{}, err
	}
	return result, nil
}

// QueryListTrainers returns every user with the trainer role.
func QueryListTrainers(ctx context.Context, token string, users UserLister) ([]account.UserProfile, error) {
	all, err := users.List(ctx, token)
	if err != nil {
		return nil, err
	}
	trainers := []account.UserProfile{}
	for _, u := range all {
		if u.Role() == account.RoleTrainer {
			trainers = append(trainers, u)
		}
	}
	return trainers, nil
}
