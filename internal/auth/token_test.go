package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
)

func newTestTokenManager(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(TokenConfig{
		Secret:   "test-secret",
		Issuer:   "emporium-test",
		Audience: "emporium-clients",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	m.now = func() time.Time { return now }
	return m
}

func TestTokenManager_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(t, now)

	in := &domain.Principal{
		UserID:   uuid.New(),
		Email:    "ana@example.com",
		Username: "ana",
		Roles:    []domain.Role{domain.RoleEmployee},
	}

	token, expiresAt, err := m.Issue(in)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	out, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(t, now)

	token, _, err := m.Issue(&domain.Principal{UserID: uuid.New(), Roles: []domain.Role{domain.RoleShopper}})
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Verify_Rejects(t *testing.T) {
	now := time.Now()
	m := newTestTokenManager(t, now)
	userID := uuid.New()

	sign := func(claims Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() Claims {
		return Claims{
			Roles: []string{"Admin"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    "emporium-test",
				Audience:  jwt.ClaimStrings{"emporium-clients"},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:    "garbage",
			token:   func() string { return "not.a.jwt" },
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "wrong secret",
			token:   func() string { return sign(valid(), jwt.SigningMethodHS256, []byte("other")) },
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "alg none",
			token:   func() string { return sign(valid(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType) },
			wantErr: ErrTokenInvalid,
		},
		{
			name: "wrong issuer",
			token: func() string {
				c := valid()
				c.Issuer = "someone-else"
				return sign(c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			wantErr: ErrTokenInvalid,
		},
		{
			name: "wrong audience",
			token: func() string {
				c := valid()
				c.Audience = jwt.ClaimStrings{"mobile"}
				return sign(c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			wantErr: ErrTokenInvalid,
		},
		{
			name: "no expiry",
			token: func() string {
				c := valid()
				c.ExpiresAt = nil
				return sign(c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			wantErr: ErrTokenInvalid,
		},
		{
			name: "subject is not a uuid",
			token: func() string {
				c := valid()
				c.Subject = "42"
				return sign(c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			wantErr: ErrTokenInvalid,
		},
		{
			name: "only unknown roles",
			token: func() string {
				c := valid()
				c.Roles = []string{"root", "god"}
				return sign(c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			wantErr: ErrTokenNoRoles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenManager_Verify_ParsesRoleNamesLoosely(t *testing.T) {
	now := time.Now()
	m := newTestTokenManager(t, now)
	userID := uuid.New()

	claims := Claims{
		Roles: []string{"super_admin", "unknown"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "emporium-test",
			Audience:  jwt.ClaimStrings{"emporium-clients"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	p, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleSuperAdmin}, p.Roles)
	assert.True(t, p.Satisfies(domain.PolicyAdminOnly))
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager(TokenConfig{})
	assert.Error(t, err)
}

func TestTokenManager_Issue_RequiresUser(t *testing.T) {
	m := newTestTokenManager(t, time.Now())
	_, _, err := m.Issue(&domain.Principal{})
	assert.Error(t, err)
}
