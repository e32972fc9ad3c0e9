package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a store account.
type User struct {
	ID          uuid.UUID
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Role        Role
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// Principal returns the identity carried by tokens issued to u.
func (u *User) Principal() *Principal {
	return &Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Roles:    []Role{u.Role},
	}
}

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// CreateUserInput is an account created by staff with an explicit role.
type CreateUserInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// UpdateUserInput changes an account. Nil fields are left unchanged.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
	Role      *Role
	IsActive  *bool
}

var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrUserExists         = &Error{Code: ECONFLICT, Message: "Email or username is already registered"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrAccountDisabled    = &Error{Code: EUNAUTHORIZED, Message: "Account is disabled"}
	ErrPasswordMismatch   = &Error{Code: EINVALID, Message: "Passwords do not match"}
)

// UserService manages accounts and credentials.
type UserService interface {
	// Register creates a Shopper account.
	Register(ctx context.Context, in RegisterInput) (*User, error)

	// Authenticate checks credentials and stamps the last login time.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	Get(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateByUsername(ctx context.Context, username string, in UpdateUserInput) (*User, error)

	// DeleteByUsernames removes the named accounts and reports how many existed.
	DeleteByUsernames(ctx context.Context, usernames []string) (int, error)
}
