package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoUploadStatus represents the lifecycle of a video-host upload session
type VideoUploadStatus string

const (
	VideoUploadStatusPending   VideoUploadStatus = "pending"   // placeholder created on the host
	VideoUploadStatusUploaded  VideoUploadStatus = "uploaded"  // bytes transferred, DB row not yet written
	VideoUploadStatusCommitted VideoUploadStatus = "committed" // referencing DB row written
	VideoUploadStatusFailed    VideoUploadStatus = "failed"
)

// VideoUpload tracks a two-phase upload against the external video host.
// Sessions that never reach committed leave an orphaned placeholder on the
// host; the cron sweeper deletes those instead of letting them accumulate.
type VideoUpload struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
	TeacherID uint              `gorm:"not null;index" json:"teacher_id"`
	GUID      string            `gorm:"type:varchar(100);index" json:"guid"` // host video identifier
	Title     string            `gorm:"not null" json:"title"`
	Status    VideoUploadStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Error     string            `gorm:"type:text" json:"error,omitempty"`
}

// TableName specifies the table name for VideoUpload
func (VideoUpload) TableName() string {
	return "video_uploads"
}
