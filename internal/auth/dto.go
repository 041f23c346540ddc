package auth

import (
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
)

// LoginRequest carries credentials for POST /api/Authorization.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse matches the legacy token payload shape.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Username    string     `json:"username"`
	Role        enums.Role `json:"role"`
}

// RegisterRequest is the payload for POST /api/Registration.
type RegisterRequest struct {
	Login      string `json:"login" validate:"required,min=3,max=64"`
	Password   string `json:"password" validate:"required,min=6,max=128"`
	FirstName  string `json:"first_name" validate:"required,max=64"`
	LastName   string `json:"last_name" validate:"required,max=64"`
	MiddleName string `json:"middle_name" validate:"max=64"`
	Police     string `json:"police" validate:"max=32"`
}

// RegisterResponse returns the created account.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}

// PromoteDoctorRequest converts an existing account into a doctor.
type PromoteDoctorRequest struct {
	UserID int    `json:"user_id" validate:"required,gt=0"`
	PostID int    `json:"post_id" validate:"required,gt=0"`
	Office string `json:"office" validate:"required,max=32"`
}

// PromoteAdminRequest converts an existing account into an administrator.
type PromoteAdminRequest struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
}

// PromoteResponse returns the account after role conversion.
type PromoteResponse struct {
	User *users.UserDTO `json:"user"`
}
