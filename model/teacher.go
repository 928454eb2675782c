package model

import (
	"time"

	"gorm.io/gorm"
)

// Teacher is the authenticated account that owns courses, videos, documents
// and reklams. TokenVersion invalidates all outstanding tokens when bumped.
type Teacher struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	PasswordHash string         `gorm:"not null;type:varchar(255)" json:"-"`
	Name         string         `gorm:"not null;type:varchar(255)" json:"name"`
	Expertise    string         `gorm:"type:varchar(255)" json:"expertise"`
	Thumbnail    string         `gorm:"type:text" json:"thumbnail"` // profile image URL
	ThumbnailKey string         `gorm:"type:varchar(500)" json:"-"`
	CoverImg     string         `gorm:"type:text" json:"cover_img"`
	CoverImgKey  string         `gorm:"type:varchar(500)" json:"-"`
	TokenVersion int            `gorm:"not null;default:0" json:"-"`

	// Relationships
	Courses   []Course   `gorm:"foreignKey:TeacherID" json:"-"`
	Documents []Document `gorm:"foreignKey:TeacherID" json:"-"`
}

// TableName specifies the table name for Teacher
func (Teacher) TableName() string {
	return "teachers"
}
