package users

import (
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
)

// UserDTO is the transport shape that omits password hashes.
type UserDTO struct {
	ID          int        `json:"id"`
	Login       string     `json:"login"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	MiddleName  string     `json:"middle_name"`
	Police      string     `json:"police"`
	Role        enums.Role `json:"role"`
	PhotoURL    *string    `json:"photo_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Doctor *DoctorDTO `json:"doctor,omitempty"`
	Admin  *AdminDTO  `json:"admin,omitempty"`
}

// DoctorDTO carries the doctor-specific attributes embedded in user payloads.
type DoctorDTO struct {
	Office string `json:"office"`
	Post   string `json:"post"`
	PostID int    `json:"post_id"`
}

// AdminDTO marks administrator accounts in user payloads.
type AdminDTO struct {
	Since time.Time `json:"since"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Login        string
	PasswordHash string
	FirstName    string
	LastName     string
	MiddleName   string
	Police       string
	Role         enums.Role
}

// UpdateProfileDTO is the editable slice of a user's record.
type UpdateProfileDTO struct {
	Login      string
	FirstName  string
	LastName   string
	MiddleName string
	Police     string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Login:       u.Login,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		MiddleName:  u.MiddleName,
		Police:      u.Police,
		Role:        u.Role,
		PhotoURL:    u.PhotoURL,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.RolePatient
	}

	return &models.User{
		Login:        c.Login,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		MiddleName:   c.MiddleName,
		Police:       c.Police,
		Role:         role,
	}
}
