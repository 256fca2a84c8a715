package account

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role is one of the three dashboard role classes.
type Role string

// Role constants
const (
	RoleManager Role = "Manager"
	RoleTrainer Role = "Trainer"
	RoleClient  Role = "Client"
	RoleUnknown Role = ""
)

// Backend account type values. The backend spells the trainer role "PersonalTrainer".
const (
	AccountTypeManager = "Manager"
	AccountTypeTrainer = "PersonalTrainer"
	AccountTypeClient  = "Client"
)

// ValidAccountTypes contains the account types a new user may be created with.
var ValidAccountTypes = []string{AccountTypeManager, AccountTypeTrainer, AccountTypeClient}

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyName        = errors.New("first and last name are required")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrInvalidRole      = errors.New("account type must be one of: Manager, PersonalTrainer, Client")
	ErrTrainerForClient = errors.New("only clients can be assigned to a trainer")
)

// ParseRole maps a backend account type to a Role, case-insensitively.
// Unrecognised values map to RoleUnknown.
func ParseRole(accountType string) Role {
	switch strings.ToLower(strings.TrimSpace(accountType)) {
	case "manager":
		return RoleManager
	case "personaltrainer", "trainer":
		return RoleTrainer
	case "client":
		return RoleClient
	default:
		return RoleUnknown
	}
}

// UserProfile is the denormalized user record kept in the session cookie.
// Field names follow the backend's JSON so a profile round-trips unchanged.
type UserProfile struct {
	UserID            int64  `json:"userId"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	AccountType       string `json:"accountType"`
	PersonalTrainerID *int64 `json:"personalTrainerId,omitempty"`
}

// Role returns the parsed role of the profile.
// INVARIANT: UserProfile fields are not mutated
func (p UserProfile) Role() Role {
	return ParseRole(p.AccountType)
}

// FullName joins first and last name.
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// TrainerAssignment returns the owning trainer id for a client.
// Always false for non-client roles, whatever the backend sent.
func (p UserProfile) TrainerAssignment() (int64, bool) {
	if p.Role() != RoleClient || p.PersonalTrainerID == nil {
		return 0, false
	}
	return *p.PersonalTrainerID, true
}

// Session pairs a profile with the bearer credential the backend issued for it.
type Session struct {
	User  UserProfile
	Token string
}

// NewUser carries the fields needed to create a user through the backend.
type NewUser struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	AccountType       string `json:"accountType"`
	PersonalTrainerID *int64 `json:"personalTrainerId"`
}

// Validate checks if the NewUser has valid data.
// PRE: NewUser struct is populated
// POST: Returns nil if valid, error otherwise
func (u *NewUser) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		return ErrEmptyName
	}
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	if !isValidAccountType(u.AccountType) {
		return ErrInvalidRole
	}
	if u.PersonalTrainerID != nil && ParseRole(u.AccountType) != RoleClient {
		return ErrTrainerForClient
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

func isValidAccountType(accountType string) bool {
	for _, t := range ValidAccountTypes {
		if t == accountType {
			return true
		}
	}
	return false
}
