package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestPrincipalContext(t *testing.T) {
	t.Run("PrincipalFromContext returns nil when anonymous", func(t *testing.T) {
		if p := PrincipalFromContext(context.Background()); p != nil {
			t.Errorf("expected nil principal, got %+v", p)
		}
	})

	t.Run("PrincipalFromContext returns principal when set", func(t *testing.T) {
		expected := &Principal{
			UserID:   uuid.New(),
			Email:    "jane@example.com",
			Username: "jane",
			Roles:    []Role{RoleShopper},
		}
		ctx := NewContextWithPrincipal(context.Background(), expected)

		p := PrincipalFromContext(ctx)
		if p == nil {
			t.Fatal("expected principal, got nil")
		}
		if p.UserID != expected.UserID {
			t.Errorf("expected UserID %v, got %v", expected.UserID, p.UserID)
		}
		if p.Username != expected.Username {
			t.Errorf("expected Username %q, got %q", expected.Username, p.Username)
		}
	})

	t.Run("UserIDFromContext returns uuid.Nil when anonymous", func(t *testing.T) {
		if id := UserIDFromContext(context.Background()); id != uuid.Nil {
			t.Errorf("expected uuid.Nil, got %v", id)
		}
	})

	t.Run("UserIDFromContext returns ID when principal set", func(t *testing.T) {
		expected := &Principal{UserID: uuid.New()}
		ctx := NewContextWithPrincipal(context.Background(), expected)
		if id := UserIDFromContext(ctx); id != expected.UserID {
			t.Errorf("expected %v, got %v", expected.UserID, id)
		}
	})

	t.Run("RequirePrincipal panics when anonymous", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic, got none")
			}
		}()
		RequirePrincipal(context.Background())
	})

	t.Run("RequirePrincipal returns principal when set", func(t *testing.T) {
		expected := &Principal{UserID: uuid.New()}
		ctx := NewContextWithPrincipal(context.Background(), expected)
		if p := RequirePrincipal(ctx); p != expected {
			t.Errorf("expected %p, got %p", expected, p)
		}
	})

	t.Run("IsAuthenticated", func(t *testing.T) {
		if IsAuthenticated(context.Background()) {
			t.Error("expected IsAuthenticated to return false")
		}
		ctx := NewContextWithPrincipal(context.Background(), &Principal{UserID: uuid.New()})
		if !IsAuthenticated(ctx) {
			t.Error("expected IsAuthenticated to return true")
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	t.Run("RequestIDFromContext returns empty string when no request ID", func(t *testing.T) {
		if requestID := RequestIDFromContext(context.Background()); requestID != "" {
			t.Errorf("expected empty string, got %q", requestID)
		}
	})

	t.Run("RequestIDFromContext returns request ID when set", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-12345")
		if requestID := RequestIDFromContext(ctx); requestID != "req-12345" {
			t.Errorf("expected %q, got %q", "req-12345", requestID)
		}
	})
}

func TestMultipleContextValues(t *testing.T) {
	p := &Principal{UserID: uuid.New(), Roles: []Role{RoleAdmin}}

	ctx := NewContextWithPrincipal(context.Background(), p)
	ctx = NewContextWithRequestID(ctx, "req-abc123")

	if got := PrincipalFromContext(ctx); got == nil || got.UserID != p.UserID {
		t.Error("principal not found or wrong ID")
	}
	if got := RequestIDFromContext(ctx); got != "req-abc123" {
		t.Errorf("expected request ID %q, got %q", "req-abc123", got)
	}
}
