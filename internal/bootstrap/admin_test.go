package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
)

type stubCounter struct {
	count int64
	err   error
	roles []string
}

func (s *stubCounter) CountUsersByRole(ctx context.Context, roles []string) (int64, error) {
	s.roles = roles
	return s.count, s.err
}

type stubUsers struct {
	domain.UserService
	created []domain.CreateUserInput
	err     error
}

func (s *stubUsers) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, in)
	return &domain.User{ID: uuid.New(), Email: in.Email, Username: in.Username, Role: in.Role}, nil
}

func validConfig() *AdminConfig {
	return &AdminConfig{
		Email:    "root@techtrend.example",
		Username: "superadmin",
		Password: "correct-horse-battery",
	}
}

func TestEnsureSuperAdmin_Creates(t *testing.T) {
	counter := &stubCounter{}
	users := &stubUsers{}

	err := EnsureSuperAdmin(context.Background(), counter, users, validConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	assert.Equal(t, []string{"SuperAdmin"}, counter.roles)
	require.Len(t, users.created, 1)
	assert.Equal(t, domain.RoleSuperAdmin, users.created[0].Role)
	assert.Equal(t, "superadmin", users.created[0].Username)
}

func TestEnsureSuperAdmin_AlreadyPresent(t *testing.T) {
	users := &stubUsers{}

	err := EnsureSuperAdmin(context.Background(), &stubCounter{count: 1}, users, validConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Empty(t, users.created)
}

func TestEnsureSuperAdmin_SkipsWithoutConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	users := &stubUsers{}

	require.NoError(t, EnsureSuperAdmin(context.Background(), &stubCounter{}, users, nil, logger))
	require.NoError(t, EnsureSuperAdmin(context.Background(), &stubCounter{}, users, &AdminConfig{Email: "a@b.c"}, logger))

	assert.Empty(t, users.created)
	assert.Contains(t, buf.String(), "skipping super admin creation")
}

func TestEnsureSuperAdmin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *AdminConfig
		counter *stubCounter
		users   *stubUsers
		wantErr bool
	}{
		{
			name:    "short password",
			cfg:     &AdminConfig{Email: "a@b.c", Username: "root", Password: "short-pw"},
			counter: &stubCounter{},
			users:   &stubUsers{},
			wantErr: true,
		},
		{
			name:    "missing username",
			cfg:     &AdminConfig{Email: "a@b.c", Password: "correct-horse-battery"},
			counter: &stubCounter{},
			users:   &stubUsers{},
			wantErr: true,
		},
		{
			name:    "count fails",
			cfg:     validConfig(),
			counter: &stubCounter{err: errors.New("connection refused")},
			users:   &stubUsers{},
			wantErr: true,
		},
		{
			name:    "create fails",
			cfg:     validConfig(),
			counter: &stubCounter{},
			users:   &stubUsers{err: errors.New("deadlock")},
			wantErr: true,
		},
		{
			name:    "account already registered",
			cfg:     validConfig(),
			counter: &stubCounter{},
			users:   &stubUsers{err: domain.ErrUserExists},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureSuperAdmin(context.Background(), tt.counter, tt.users, tt.cfg, slog.New(slog.DiscardHandler))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
