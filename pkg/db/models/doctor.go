package models

import "time"

// DoctorPost is a medical specialty/position a doctor can be assigned to.
type DoctorPost struct {
	ID   int    `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;uniqueIndex:idx_doctor_posts_name"`
}

// Doctor holds the doctor-specific attributes of a promoted user. The
// primary key equals the user id, so logins and issued tokens survive the
// promotion.
type Doctor struct {
	ID        int        `gorm:"column:id;primaryKey"`
	Office    string     `gorm:"column:office;not null"`
	PostID    int        `gorm:"column:post_id;not null"`
	Post      DoctorPost `gorm:"foreignKey:PostID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
