package model

import (
	"time"
)

// CronJobStatus represents the outcome of a cron job run
type CronJobStatus string

const (
	CronJobStatusSuccess CronJobStatus = "success"
	CronJobStatusFailed  CronJobStatus = "failed"
)

// CronJobLog records every scheduled job run
type CronJobLog struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	JobName    string        `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status     CronJobStatus `gorm:"type:varchar(20);not null" json:"status"`
	Message    string        `gorm:"type:text" json:"message,omitempty"`
	DurationMs int64         `gorm:"default:0" json:"duration_ms"`
}

// TableName specifies the table name for CronJobLog
func (CronJobLog) TableName() string {
	return "cron_job_logs"
}
