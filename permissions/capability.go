package permissions

import (
	"context"
	"slices"
	"time"

	"elc/shared/constant"
)

// Capability names a single action a role may perform.
type Capability string

const (
	BookingCreate    Capability = "booking:create"
	BookingApprove   Capability = "booking:approve"
	BookingManage    Capability = "booking:manage"
	BookingSweep     Capability = "booking:sweep"
	AttendanceManage Capability = "attendance:manage"
	RoomManage       Capability = "room:manage"
	ResourceManage   Capability = "resource:manage"
	UserManage       Capability = "user:manage"
)

var roleCapabilities = map[string][]Capability{
	constant.RoleStudent: {BookingCreate},
	constant.RoleFaculty: {BookingCreate, ResourceManage},
	constant.RoleAdmin: {
		BookingCreate, BookingApprove, BookingManage, BookingSweep,
		AttendanceManage, RoomManage, ResourceManage,
	},
	constant.RoleSuperAdmin: {
		BookingCreate, BookingApprove, BookingManage, BookingSweep,
		AttendanceManage, RoomManage, ResourceManage, UserManage,
	},
}

// Capabilities returns the capabilities granted to role. Unknown roles get none.
func Capabilities(role string) []Capability {
	return slices.Clone(roleCapabilities[role])
}

// Allows reports whether role holds every one of caps.
func Allows(role string, caps ...Capability) bool {
	granted, ok := roleCapabilities[role]
	if !ok {
		return false
	}

	for _, c := range caps {
		if !slices.Contains(granted, c) {
			return false
		}
	}

	return true
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]

	return ok
}

// EffectiveRole returns elevated while now is strictly before until, and base
// otherwise. An elevation without an expiry is ignored.
func EffectiveRole(base, elevated string, until *time.Time, now time.Time) string {
	if elevated == constant.Empty || until == nil || !ValidRole(elevated) {
		return base
	}

	if now.Before(*until) {
		return elevated
	}

	return base
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) Allows(caps ...Capability) bool {
	return Allows(p.Role, caps...)
}

// Owns reports whether the principal is the user identified by userID.
func (p Principal) Owns(userID string) bool {
	return p.UserID != constant.Empty && p.UserID == userID
}

// FromContext reads the principal placed on ctx by the auth middleware.
func FromContext(ctx context.Context) Principal {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Principal{UserID: userID, Role: role}
}
