package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a teacher-owned course (e.g. "Algebra I", grade 9, math).
// Deleting a course intentionally does not cascade to its videos or documents.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID    uint           `gorm:"not null;index" json:"teacher_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Grade        string         `gorm:"type:varchar(10)" json:"grade"` // "7".."12"
	Subject      string         `gorm:"type:varchar(100)" json:"subject"`
	Thumbnail    string         `gorm:"type:text" json:"thumbnail"` // storage URL, empty when none
	ThumbnailKey string         `gorm:"type:varchar(500)" json:"-"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
	Videos  []Video `gorm:"foreignKey:CourseID" json:"videos,omitempty"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}
