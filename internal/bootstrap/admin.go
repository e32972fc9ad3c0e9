// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/techtrend/emporium/internal/auth"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/telemetry"
)

// AdminConfig contains configuration for the initial super admin.
type AdminConfig struct {
	Email    string
	Username string
	Password string
}

// Validate checks that the admin configuration is valid.
func (c *AdminConfig) Validate() error {
	if c.Email == "" {
		return errors.New("admin email is required")
	}
	if c.Username == "" {
		return errors.New("admin username is required")
	}
	if c.Password == "" {
		return errors.New("admin password is required")
	}
	if len(c.Password) < 12 {
		return errors.New("admin password must be at least 12 characters")
	}
	return auth.ValidatePassword(c.Password)
}

// RoleCounter counts accounts holding any of the given roles.
// *repository.Queries satisfies it.
type RoleCounter interface {
	CountUsersByRole(ctx context.Context, roles []string) (int64, error)
}

// EnsureSuperAdmin creates the initial SuperAdmin account when none exists.
// It is idempotent and safe to call on every startup.
//
// A nil config or one without email and password is skipped with a warning
// so development databases can run without an administrator.
func EnsureSuperAdmin(
	ctx context.Context,
	counter RoleCounter,
	users domain.UserService,
	cfg *AdminConfig,
	logger *slog.Logger,
) error {
	if cfg == nil || cfg.Email == "" || cfg.Password == "" {
		logger.Warn("bootstrap: skipping super admin creation - SUPERADMIN_EMAIL or SUPERADMIN_PASSWORD not set",
			"hint", "Set these environment variables to create an administrator on first startup",
		)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid admin configuration: %w", err)
	}

	n, err := counter.CountUsersByRole(ctx, []string{string(domain.RoleSuperAdmin)})
	if err != nil {
		return fmt.Errorf("failed to count super admins: %w", err)
	}
	if n > 0 {
		logger.Info("bootstrap: super admin already exists", "count", n)
		return nil
	}

	user, err := users.Create(ctx, domain.CreateUserInput{
		Email:     cfg.Email,
		Username:  cfg.Username,
		Password:  cfg.Password,
		FirstName: "Super",
		LastName:  "Admin",
		Role:      domain.RoleSuperAdmin,
	})
	if errors.Is(err, domain.ErrUserExists) {
		// Another instance won the race, or the account exists with a lesser role.
		logger.Warn("bootstrap: admin email or username already registered",
			"email", cfg.Email,
			"username", cfg.Username,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	if telemetry.Business != nil {
		telemetry.Business.Signups.WithLabelValues(user.Role.String(), "bootstrap").Inc()
	}
	logger.Info("bootstrap: super admin created",
		"email", user.Email,
		"user_id", user.ID.String(),
	)
	return nil
}
