package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records destructive actions against owned collections
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	TeacherID  uint           `gorm:"not null;index" json:"teacher_id"`
	Action     string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "course_delete"
	Resource   string         `gorm:"type:varchar(100)" json:"resource"`        // e.g. "courses"
	ResourceID uint           `json:"resource_id"`
	OldValue   datatypes.JSON `gorm:"type:jsonb" json:"old_value,omitempty"`
	IPAddress  string         `gorm:"type:varchar(45)" json:"ip_address"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
