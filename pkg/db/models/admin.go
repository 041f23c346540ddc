package models

import "time"

// Admin marks a user as an administrator. Keyed by the user id.
type Admin struct {
	ID        int       `gorm:"column:id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
