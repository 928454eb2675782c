package audit

import (
	"encoding/json"
	"log"

	"github.com/derslig/teacher-panel-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder writes audit trail entries for destructive collection operations
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record persists one audit entry. The deleted row is serialized as the old
// value. Audit failures are logged, never surfaced: the user action already
// succeeded.
func (r *Recorder) Record(teacherID uint, action, resource string, resourceID uint, oldValue interface{}, ip string) {
	var oldJSON datatypes.JSON
	if oldValue != nil {
		raw, err := json.Marshal(oldValue)
		if err == nil {
			oldJSON = datatypes.JSON(raw)
		}
	}

	entry := model.AuditLog{
		TeacherID:  teacherID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldJSON,
		IPAddress:  ip,
	}

	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("failed to write audit log for %s: %v", action, err)
	}
}
