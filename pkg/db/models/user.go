package models

import (
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
)

// User represents the canonical account entity. Doctors and admins keep a
// row here as well; their extra attributes live in satellite tables keyed
// by the same id.
type User struct {
	ID           int        `gorm:"column:id;primaryKey;autoIncrement"`
	Login        string     `gorm:"column:login;type:text;not null;uniqueIndex:idx_users_login"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	MiddleName   string     `gorm:"column:middle_name;not null"`
	Police       string     `gorm:"column:police;not null"`
	Role         enums.Role `gorm:"column:role;not null;default:User"`
	PhotoURL     *string    `gorm:"column:photo_url"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
