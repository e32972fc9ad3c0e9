package postgres

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/auth"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

// UserService implements domain.UserService using PostgreSQL.
type UserService struct {
	repo repository.Querier
}

// Compile-time check to ensure UserService implements domain.UserService.
var _ domain.UserService = (*UserService)(nil)

// NewUserService creates a new UserService instance.
func NewUserService(repo repository.Querier) *UserService {
	return &UserService{
		repo: repo,
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// mapRepoUserToDomain converts a repository User to a domain User.
func mapRepoUserToDomain(u repository.User) *domain.User {
	role, err := domain.ParseRole(u.Role)
	if err != nil {
		role = domain.RoleShopper
	}
	return &domain.User{
		ID:          fromPgUUID(u.ID),
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        role,
		IsActive:    u.IsActive,
		LastLoginAt: timePtr(u.LastLoginAt),
		CreatedAt:   u.CreatedAt.Time,
		UpdatedAt:   u.UpdatedAt.Time,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateAccount(op, email, username, password string) error {
	var err error
	if _, perr := mail.ParseAddress(email); perr != nil || !strings.Contains(email, "@") {
		err = domain.AddFieldError(err, "email", "a valid email address is required")
	}
	if username == "" {
		err = domain.AddFieldError(err, "username", "username is required")
	} else if len(username) > 50 {
		err = domain.AddFieldError(err, "username", "must be at most 50 characters")
	}
	if perr := auth.ValidatePassword(password); perr != nil {
		err = domain.AddFieldError(err, "password", perr.Error())
	}
	if ve, ok := err.(*domain.ValidationError); ok {
		ve.Op = op
		return ve
	}
	return nil
}

func (s *UserService) create(ctx context.Context, op, email, username, password, firstName, lastName string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	if err := validateAccount(op, email, username, password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.NewValidationError(op, "role", "unknown role")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         string(role),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, domain.Internal(err, op, "failed to create user")
	}

	return mapRepoUserToDomain(user), nil
}

// =============================================================================
// Authentication Operations
// =============================================================================

// Register creates a Shopper account.
func (s *UserService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	return s.create(ctx, "user.register", in.Email, in.Username, in.Password, in.FirstName, in.LastName, domain.RoleShopper)
}

// Authenticate verifies email/password and returns the user if valid.
// Unknown emails and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "user.authenticate"

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			auth.BurnVerify(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, op, "failed to verify password")
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if err := s.repo.TouchUserLogin(ctx, user.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to record login")
	}

	return mapRepoUserToDomain(user), nil
}

// =============================================================================
// Account Management
// =============================================================================

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get", "failed to get user")
	}
	return mapRepoUserToDomain(user), nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, domain.Internal(err, "user.list", "failed to list users")
	}

	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = *mapRepoUserToDomain(row)
	}
	return users, nil
}

// Create adds an account with an explicit role.
func (s *UserService) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	return s.create(ctx, "user.create", in.Email, in.Username, in.Password, in.FirstName, in.LastName, in.Role)
}

// UpdateByUsername applies the non-nil fields of in.
func (s *UserService) UpdateByUsername(ctx context.Context, username string, in domain.UpdateUserInput) (*domain.User, error) {
	const op = "user.update"

	current, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	params := repository.UpdateUserParams{
		ID:           current.ID,
		Email:        current.Email,
		FirstName:    current.FirstName,
		LastName:     current.LastName,
		PasswordHash: current.PasswordHash,
		Role:         current.Role,
		IsActive:     current.IsActive,
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if _, perr := mail.ParseAddress(email); perr != nil {
			return nil, domain.NewValidationError(op, "email", "a valid email address is required")
		}
		params.Email = email
	}
	if in.FirstName != nil {
		params.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		params.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
				return nil, domain.NewValidationError(op, "password", err.Error())
			}
			return nil, domain.Internal(err, op, "failed to hash password")
		}
		params.PasswordHash = hash
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.NewValidationError(op, "role", "unknown role")
		}
		params.Role = string(*in.Role)
	}
	if in.IsActive != nil {
		params.IsActive = *in.IsActive
	}

	user, err := s.repo.UpdateUser(ctx, params)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, domain.Internal(err, op, "failed to update user")
	}
	return mapRepoUserToDomain(user), nil
}

// DeleteByUsernames removes the named accounts and reports how many existed.
func (s *UserService) DeleteByUsernames(ctx context.Context, usernames []string) (int, error) {
	const op = "user.delete"

	names := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u = strings.ToLower(strings.TrimSpace(u)); u != "" {
			names = append(names, u)
		}
	}
	if len(names) == 0 {
		return 0, domain.NewValidationError(op, "usernames", "at least one username is required")
	}

	n, err := s.repo.DeleteUsersByUsername(ctx, names)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to delete users")
	}
	return int(n), nil
}
