package dto

import (
	"time"

	"elc/internal/domains/user/model"
	"elc/shared"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gModel "elc/shared/model"
	"elc/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email      string  `json:"email"                 validate:"required,email"`
	Password   string  `json:"password"              validate:"required,min=8"`
	Role       string  `json:"role"                  validate:"omitempty,oneof=student faculty admin superadmin"`
	FullName   *string `json:"full_name,omitempty"   validate:"omitempty,min=2,max=100"`
	EmployeeID *string `json:"employee_id,omitempty" validate:"required_if=Role faculty,omitempty,max=50"`
	Department *string `json:"department,omitempty"  validate:"omitempty,max=100"`
}

func (r *CreateUserRequest) ToModel(username string, hashedPassword string) model.User {
	role := r.Role
	if role == constant.Empty {
		role = constant.RoleStudent
	}

	now := timezone.Now()

	return model.User{
		ID:         uuid.NewString(),
		Email:      r.Email,
		Password:   hashedPassword,
		Role:       role,
		FullName:   r.FullName,
		EmployeeID: r.EmployeeID,
		Department: r.Department,
		Active:     true,
		Metadata: gModel.NewMetadata(username, now),
	}
}

type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	FullName      *string    `json:"full_name,omitempty"`
	EmployeeID    *string    `json:"employee_id,omitempty"`
	Department    *string    `json:"department,omitempty"`
	ElevatedRole  *string    `json:"elevated_role,omitempty"`
	ElevatedUntil *time.Time `json:"elevated_until,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	Active        bool       `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Role = model.Role
	r.FullName = model.FullName
	r.EmployeeID = model.EmployeeID
	r.Department = model.Department
	r.ElevatedRole = model.ElevatedRole
	r.ElevatedUntil = model.ElevatedUntil
	r.LastLogin = model.LastLogin
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

// UpdateUserRequest is the admin edit of a user. Setting ElevatedRole and
// ElevatedUntil grants a temporary role; RevokeElevation clears it.
type UpdateUserRequest struct {
	Role            *string    `db:"role"           json:"role,omitempty"           validate:"omitempty,oneof=student faculty admin superadmin"`
	FullName        *string    `db:"full_name"      json:"full_name,omitempty"      validate:"omitempty,min=2,max=100"`
	EmployeeID      *string    `db:"employee_id"    json:"employee_id,omitempty"    validate:"omitempty,max=50"`
	Department      *string    `db:"department"     json:"department,omitempty"     validate:"omitempty,max=100"`
	Active          *bool      `db:"active"         json:"active,omitempty"`
	ElevatedRole    *string    `db:"elevated_role"  json:"elevated_role,omitempty"  validate:"required_with=ElevatedUntil,omitempty,oneof=faculty admin superadmin"`
	ElevatedUntil   *time.Time `db:"elevated_until" json:"elevated_until,omitempty" validate:"required_with=ElevatedRole"`
	RevokeElevation bool       `json:"revoke_elevation,omitempty"`
}

func (u *UpdateUserRequest) IsEmpty() bool {
	return u.Role == nil && u.FullName == nil && u.EmployeeID == nil && u.Department == nil &&
		u.Active == nil && u.ElevatedRole == nil && u.ElevatedUntil == nil && !u.RevokeElevation
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
