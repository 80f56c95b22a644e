package permissions

import (
	"testing"

	"elc/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedEndpoints(t *testing.T) {
	data := Get()
	require.NotNil(t, data)
	assert.NotEmpty(t, data.Endpoints)

	login := data.FindPermissions("/v1/auth/login", "POST")
	assert.True(t, login.Skip)

	approve := data.FindPermissions("/v1/bookings/{id}/approve", "PATCH")
	assert.Equal(t, []Capability{BookingApprove}, approve.Capabilities)

	missing := data.FindPermissions("/v1/unknown", "GET")
	assert.Equal(t, Permission{}, missing)
}

func TestParse_Invalid(t *testing.T) {
	_, err := parse([]byte("{"))
	assert.Error(t, err)
}

func TestPermission_Authorize(t *testing.T) {
	tests := []struct {
		name       string
		permission Permission
		role       string
		want       bool
	}{
		{
			name:       "open endpoint",
			permission: Permission{},
			role:       constant.RoleStudent,
			want:       true,
		},
		{
			name:       "role listed",
			permission: Permission{Permissions: []string{constant.RoleAdmin}},
			role:       constant.RoleAdmin,
			want:       true,
		},
		{
			name:       "role not listed",
			permission: Permission{Permissions: []string{constant.RoleAdmin}},
			role:       constant.RoleFaculty,
			want:       false,
		},
		{
			name:       "capability held",
			permission: Permission{Capabilities: []Capability{BookingApprove}},
			role:       constant.RoleSuperAdmin,
			want:       true,
		},
		{
			name:       "capability missing",
			permission: Permission{Capabilities: []Capability{BookingApprove}},
			role:       constant.RoleStudent,
			want:       false,
		},
		{
			name: "role listed but capability missing",
			permission: Permission{
				Permissions:  []string{constant.RoleAdmin},
				Capabilities: []Capability{UserManage},
			},
			role: constant.RoleAdmin,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.permission.Authorize(tt.role))
		})
	}
}
