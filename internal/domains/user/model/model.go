package model

import (
	"time"

	"elc/permissions"
	"elc/shared/constant"
	"elc/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID            = "id"
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldRole          = "role"
	FieldFullName      = "full_name"
	FieldEmployeeID    = "employee_id"
	FieldDepartment    = "department"
	FieldElevatedRole  = "elevated_role"
	FieldElevatedUntil = "elevated_until"
	FieldLastLogin     = "last_login"
	FieldActive        = "active"
)

type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	Password      string     `db:"password"`
	Role          string     `db:"role"`
	FullName      *string    `db:"full_name"`
	EmployeeID    *string    `db:"employee_id"`
	Department    *string    `db:"department"`
	ElevatedRole  *string    `db:"elevated_role"`
	ElevatedUntil *time.Time `db:"elevated_until"`
	LastLogin     *time.Time `db:"last_login"`
	Active        bool       `db:"active"`
	model.Metadata
}

// EffectiveRole is the role the user acts with at now, taking a running
// elevation into account.
func (u User) EffectiveRole(now time.Time) string {
	elevated := constant.Empty
	if u.ElevatedRole != nil {
		elevated = *u.ElevatedRole
	}

	return permissions.EffectiveRole(u.Role, elevated, u.ElevatedUntil, now)
}
