package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
)

func TestUserHandler_Create_ParsesRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
		wantRole   domain.Role
	}{
		{name: "canonical", role: "Employee", wantStatus: http.StatusCreated, wantRole: domain.RoleEmployee},
		{name: "lower case", role: "admin", wantStatus: http.StatusCreated, wantRole: domain.RoleAdmin},
		{name: "legacy spelling", role: "Administrator", wantStatus: http.StatusCreated, wantRole: domain.RoleAdmin},
		{name: "unknown", role: "root", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Role
			users := &mockUserService{
				CreateFunc: func(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
					got = in.Role
					return sampleUser(in.Role), nil
				},
			}
			h := NewUserHandler(users, nil)

			body := `{"email":"new@example.com","username":"newbie","password":"hunter22!","role":"` + tt.role + `"}`
			rec := httptest.NewRecorder()
			h.Create(rec, newRequest(http.MethodPost, "/api/users", body, principal(domain.RoleSuperAdmin)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, tt.wantRole, got)
			} else {
				assert.Contains(t, errorFields(t, rec), "role")
			}
		})
	}
}

func TestUserHandler_Update(t *testing.T) {
	var gotName string
	var gotIn domain.UpdateUserInput
	users := &mockUserService{
		UpdateByUsernameFunc: func(ctx context.Context, username string, in domain.UpdateUserInput) (*domain.User, error) {
			gotName, gotIn = username, in
			return sampleUser(domain.RoleAdmin), nil
		},
	}
	h := NewUserHandler(users, nil)

	req := newRequest(http.MethodPut, "/api/users/jane", `{"role":"admin","isActive":false}`, principal(domain.RoleSuperAdmin))
	req.SetPathValue("username", "jane")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane", gotName)
	require.NotNil(t, gotIn.Role)
	assert.Equal(t, domain.RoleAdmin, *gotIn.Role)
	require.NotNil(t, gotIn.IsActive)
	assert.False(t, *gotIn.IsActive)
	assert.Nil(t, gotIn.Email)
}

func TestUserHandler_Delete(t *testing.T) {
	caller := principal(domain.RoleSuperAdmin)

	t.Run("deletes named accounts", func(t *testing.T) {
		users := &mockUserService{
			DeleteByUsernamesFunc: func(ctx context.Context, names []string) (int, error) {
				assert.Equal(t, []string{"a", "b", "ghost"}, names)
				return 2, nil
			},
		}
		h := NewUserHandler(users, nil)

		rec := httptest.NewRecorder()
		h.Delete(rec, newRequest(http.MethodDelete, "/api/users", `{"usernames":["a","b","ghost"]}`, caller))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Users deleted","count":2}`, rec.Body.String())
	})

	t.Run("refuses to delete the caller", func(t *testing.T) {
		h := NewUserHandler(&mockUserService{}, nil)

		rec := httptest.NewRecorder()
		h.Delete(rec, newRequest(http.MethodDelete, "/api/users", `{"usernames":["`+caller.Username+`"]}`, caller))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty list", func(t *testing.T) {
		h := NewUserHandler(&mockUserService{}, nil)

		rec := httptest.NewRecorder()
		h.Delete(rec, newRequest(http.MethodDelete, "/api/users", `{"usernames":[]}`, caller))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorFields(t, rec), "usernames")
	})
}
