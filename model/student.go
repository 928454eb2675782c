package model

import (
	"time"

	"gorm.io/gorm"
)

// Student represents a registered student. The teacher_id records who
// registered the student, but the students collection is listed without an
// owner filter: it is shared across all teachers.
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID uint           `gorm:"not null;index" json:"teacher_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Verified  bool           `gorm:"default:false" json:"verified"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}
