package dto

import (
	"time"

	"elc/infras/jwt"
	userModel "elc/internal/domains/user/model"
	"elc/shared/constant"
	gModel "elc/shared/model"
	"elc/shared/timezone"

	"github.com/google/uuid"
)

// RegisterRequest is a self sign-up. Only students and faculty may register
// themselves; faculty must give their employee id.
type RegisterRequest struct {
	Email      string  `json:"email"                 validate:"required,email"`
	Password   string  `json:"password"              validate:"required,min=8"`
	FullName   *string `json:"full_name,omitempty"   validate:"omitempty,min=2,max=100"`
	Role       string  `json:"role"                  validate:"omitempty,oneof=student faculty"`
	EmployeeID *string `json:"employee_id,omitempty" validate:"required_if=Role faculty,omitempty,max=50"`
	Department *string `json:"department,omitempty"  validate:"omitempty,max=100"`
}

func (r *RegisterRequest) RoleOrDefault() string {
	if r.Role == constant.Empty {
		return constant.RoleStudent
	}

	return r.Role
}

func (r *RegisterRequest) ToUserModel(username string, hashedPassword string) userModel.User {
	now := timezone.Now()

	return userModel.User{
		ID:         uuid.NewString(),
		Email:      r.Email,
		Password:   hashedPassword,
		Role:       r.RoleOrDefault(),
		FullName:   r.FullName,
		EmployeeID: r.EmployeeID,
		Department: r.Department,
		Active:     true,
		Metadata: gModel.NewMetadata(username, now),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair, role string) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
	l.Role = role
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.AccessToken = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.TokenType = tokenPair.TokenType
	r.ExpiresIn = tokenPair.ExpiresIn
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required,min=8"`
}
