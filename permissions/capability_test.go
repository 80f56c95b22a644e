package permissions_test

import (
	"context"
	"testing"
	"time"

	"elc/permissions"
	"elc/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	assert.True(t, permissions.Allows(constant.RoleStudent, permissions.BookingCreate))
	assert.False(t, permissions.Allows(constant.RoleStudent, permissions.BookingApprove))
	assert.True(t, permissions.Allows(constant.RoleAdmin, permissions.BookingApprove, permissions.BookingSweep))
	assert.False(t, permissions.Allows(constant.RoleAdmin, permissions.BookingApprove, permissions.UserManage))
	assert.True(t, permissions.Allows(constant.RoleSuperAdmin, permissions.UserManage))
	assert.False(t, permissions.Allows("janitor", permissions.BookingCreate))
	assert.True(t, permissions.Allows(constant.RoleFaculty), "no capabilities requested")
}

func TestCapabilities_ReturnsCopy(t *testing.T) {
	caps := permissions.Capabilities(constant.RoleStudent)
	caps[0] = permissions.UserManage

	assert.False(t, permissions.Allows(constant.RoleStudent, permissions.UserManage))
	assert.Empty(t, permissions.Capabilities("janitor"))
}

func TestEffectiveRole(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name     string
		elevated string
		until    *time.Time
		want     string
	}{
		{name: "no elevation", elevated: "", until: nil, want: constant.RoleFaculty},
		{name: "active elevation", elevated: constant.RoleAdmin, until: &later, want: constant.RoleAdmin},
		{name: "expired elevation", elevated: constant.RoleAdmin, until: &earlier, want: constant.RoleFaculty},
		{name: "expires exactly now", elevated: constant.RoleAdmin, until: &now, want: constant.RoleFaculty},
		{name: "elevation without expiry", elevated: constant.RoleAdmin, until: nil, want: constant.RoleFaculty},
		{name: "unknown elevated role", elevated: "root", until: &later, want: constant.RoleFaculty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permissions.EffectiveRole(constant.RoleFaculty, tt.elevated, tt.until, now))
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

	principal := permissions.FromContext(ctx)
	assert.Equal(t, "user-1", principal.UserID)
	assert.True(t, principal.Allows(permissions.BookingApprove))
	assert.True(t, principal.Owns("user-1"))
	assert.False(t, principal.Owns("user-2"))

	anonymous := permissions.FromContext(context.Background())
	assert.False(t, anonymous.Owns(""))
	assert.False(t, anonymous.Allows(permissions.BookingCreate))
}
