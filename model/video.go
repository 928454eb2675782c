package model

import (
	"time"

	"gorm.io/gorm"
)

// Video represents a lesson video belonging to exactly one course. Videos
// carry no teacher_id of their own: visibility is scoped transitively through
// the owning course's teacher.
type Video struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID     uint           `gorm:"not null;index" json:"course_id"`
	Title        string         `gorm:"not null" json:"title"`
	Link         string         `gorm:"type:text;not null" json:"link"` // embeddable player URL
	VideoHLSURL  string         `gorm:"type:text" json:"video_hls_url,omitempty"`
	Free         bool           `gorm:"default:false" json:"free"`
	Thumbnail    string         `gorm:"type:text" json:"thumbnail,omitempty"`
	ThumbnailKey string         `gorm:"type:varchar(500)" json:"-"`

	// Relationships
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for Video
func (Video) TableName() string {
	return "videos"
}
