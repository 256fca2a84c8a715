package program

import (
	"errors"
	"strconv"
	"strings"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidSets     = errors.New("sets must be a non-negative whole number")
	ErrInvalidReps     = errors.New("repetitions must be a non-negative whole number")
	ErrMissingProgram  = errors.New("workout program id is required")
	ErrMissingTrainer  = errors.New("personal trainer id is required")
	ErrExerciseMissing = errors.New("exercise is not part of this program")
)

// WorkoutProgram is a trainer-owned program optionally assigned to a client.
type WorkoutProgram struct {
	WorkoutProgramID  int64      `json:"workoutProgramId"`
	GroupID           string     `json:"groupId"`
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	Exercises         []Exercise `json:"exercises"`
	PersonalTrainerID int64      `json:"personalTrainerId"`
	ClientID          *int64     `json:"clientId"`
}

// DisplayName returns the program name or a placeholder.
func (p WorkoutProgram) DisplayName() string {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return "Untitled program"
	}
	return *p.Name
}

// IsAssignedTo reports whether the program belongs to the given client.
func (p WorkoutProgram) IsAssignedTo(clientID int64) bool {
	return p.ClientID != nil && *p.ClientID == clientID
}

// NewProgram carries the fields needed to create a program.
type NewProgram struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Exercises   []ExerciseInput `json:"exercises,omitempty"`
	ClientID    *int64          `json:"clientId"`
}

// Validate checks if the NewProgram has valid data.
// PRE: NewProgram struct is populated
// POST: Returns nil if valid, error otherwise
func (p *NewProgram) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	for i := range p.Exercises {
		if err := p.Exercises[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProgramUpdate carries a full program update.
type ProgramUpdate struct {
	WorkoutProgramID  int64  `json:"workoutProgramId"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	PersonalTrainerID int64  `json:"personalTrainerId"`
	ClientID          *int64 `json:"clientId"`
}

// Validate checks if the ProgramUpdate has valid data.
func (u *ProgramUpdate) Validate() error {
	if u.WorkoutProgramID == 0 {
		return ErrMissingProgram
	}
	if u.PersonalTrainerID == 0 {
		return ErrMissingTrainer
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Exercise is a single exercise, standalone or attached to a program.
type Exercise struct {
	ExerciseID        int64   `json:"exerciseId"`
	GroupID           string  `json:"groupId"`
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Sets              *int    `json:"sets"`
	Repetitions       *int    `json:"repetitions"`
	Time              *string `json:"time"`
	WorkoutProgramID  *int64  `json:"workoutProgramId"`
	PersonalTrainerID *int64  `json:"personalTrainerId"`
}

// ExerciseInput carries the user-editable fields of an exercise.
type ExerciseInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Sets        int    `json:"sets"`
	Repetitions int    `json:"repetitions"`
	Time        string `json:"time"`
}

// Validate checks if the ExerciseInput has valid data.
func (in *ExerciseInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if in.Sets < 0 {
		return ErrInvalidSets
	}
	if in.Repetitions < 0 {
		return ErrInvalidReps
	}
	return nil
}

// ParseExerciseForm builds an ExerciseInput from raw form strings.
// Empty sets and repetitions become 0; an empty time becomes "0".
func ParseExerciseForm(name, description, sets, repetitions, time string) (ExerciseInput, error) {
	in := ExerciseInput{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Time:        strings.TrimSpace(time),
	}
	var err error
	if in.Sets, err = parseCount(sets); err != nil {
		return ExerciseInput{}, ErrInvalidSets
	}
	if in.Repetitions, err = parseCount(repetitions); err != nil {
		return ExerciseInput{}, ErrInvalidReps
	}
	if in.Time == "" {
		in.Time = "0"
	}
	return in, in.Validate()
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidSets
	}
	return n, nil
}

// ExerciseUpdate carries a full exercise update, including the owning program and trainer.
type ExerciseUpdate struct {
	ExerciseID        int64  `json:"exerciseId"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Sets              int    `json:"sets"`
	Repetitions       int    `json:"repetitions"`
	Time              string `json:"time"`
	WorkoutProgramID  *int64 `json:"workoutProgramId"`
	PersonalTrainerID *int64 `json:"personalTrainerId"`
}

// UpdateFor builds the update payload for an existing exercise.
// The program id falls back to programID when the exercise carries none; 0 means no program.
func (in ExerciseInput) UpdateFor(current Exercise, programID int64) ExerciseUpdate {
	var pid *int64
	switch {
	case current.WorkoutProgramID != nil && *current.WorkoutProgramID != 0:
		id := *current.WorkoutProgramID
		pid = &id
	case programID != 0:
		pid = &programID
	}
	return ExerciseUpdate{
		ExerciseID:        current.ExerciseID,
		Name:              in.Name,
		Description:       in.Description,
		Sets:              in.Sets,
		Repetitions:       in.Repetitions,
		Time:              in.Time,
		WorkoutProgramID:  pid,
		PersonalTrainerID: current.PersonalTrainerID,
	}
}

// Apply returns a copy of e with the update's editable fields merged in.
func (u ExerciseUpdate) Apply(e Exercise) Exercise {
	name, description, time := u.Name, u.Description, u.Time
	sets, reps := u.Sets, u.Repetitions
	e.Name = &name
	e.Description = &description
	e.Sets = &sets
	e.Repetitions = &reps
	e.Time = &time
	if u.WorkoutProgramID != nil {
		pid := *u.WorkoutProgramID
		e.WorkoutProgramID = &pid
	}
	return e
}
