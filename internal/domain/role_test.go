package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "Shopper", want: RoleShopper},
		{in: "customer", want: RoleShopper},
		{in: "EMPLOYEE", want: RoleEmployee},
		{in: "Administrator", want: RoleAdmin},
		{in: "admin", want: RoleAdmin},
		{in: "Super Admin", want: RoleSuperAdmin},
		{in: "super_admin", want: RoleSuperAdmin},
		{in: "super-administrator", want: RoleSuperAdmin},
		{in: "root", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("Owner").Valid())
	assert.False(t, Role("admin").Valid(), "stored roles are canonical")
}

func TestPrincipal_Satisfies(t *testing.T) {
	tests := []struct {
		role     Role
		employee bool
		admin    bool
		super    bool
	}{
		{role: RoleShopper},
		{role: RoleEmployee, employee: true},
		{role: RoleAdmin, employee: true, admin: true},
		{role: RoleSuperAdmin, employee: true, admin: true, super: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := &Principal{Roles: []Role{tt.role}}
			assert.True(t, p.Satisfies(PolicyAuthenticated))
			assert.Equal(t, tt.employee, p.Satisfies(PolicyEmployeeOnly))
			assert.Equal(t, tt.admin, p.Satisfies(PolicyAdminOnly))
			assert.Equal(t, tt.super, p.Satisfies(PolicySuperAdmin))
			assert.Equal(t, tt.employee, p.IsStaff())
			assert.True(t, p.HasRole(tt.role))
		})
	}
}

func TestPrincipal_NilIsAnonymous(t *testing.T) {
	var p *Principal
	assert.False(t, p.Satisfies(PolicyAuthenticated))
	assert.False(t, p.HasRole(RoleShopper))
	assert.False(t, p.IsStaff())
}

func TestPrincipal_NoRoles(t *testing.T) {
	p := &Principal{}
	assert.False(t, p.Satisfies(PolicyAuthenticated))
}
