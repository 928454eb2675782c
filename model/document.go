package model

import (
	"time"

	"gorm.io/gorm"
)

// Document represents a teacher-owned file stored in object storage. The
// course association is optional and carries no ownership: the row-level
// filter is always the teacher.
type Document struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID uint           `gorm:"not null;index" json:"teacher_id"`
	CourseID  *uint          `gorm:"index" json:"course_id,omitempty"`
	Title     string         `gorm:"not null" json:"title"`
	FileURL   string         `gorm:"type:text;not null" json:"file_url"`
	FilePath  string         `gorm:"type:varchar(500);not null" json:"file_path"` // storage key
	FileName  string         `gorm:"not null" json:"file_name"`
	FileSize  int64          `gorm:"default:0" json:"file_size"`
	FileType  string         `gorm:"type:varchar(100)" json:"file_type"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}
