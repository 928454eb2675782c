package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/derslig/teacher-panel-api/model"
)

// orphanAge is how long a non-committed upload session may linger before its
// host placeholder is considered orphaned.
const orphanAge = time.Hour

// runJob executes a job function and records the outcome in cron_job_logs
func (m *CronManager) runJob(name string, fn func() (string, error)) {
	log.Printf("[CRON] %s starting", name)
	start := time.Now()

	message, err := fn()
	entry := model.CronJobLog{
		JobName:    name,
		Status:     model.CronJobStatusSuccess,
		Message:    message,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = model.CronJobStatusFailed
		entry.Message = err.Error()
		log.Printf("[CRON] %s failed: %v", name, err)
	}

	if logErr := m.db.Create(&entry).Error; logErr != nil {
		log.Printf("[CRON] failed to record job log for %s: %v", name, logErr)
	}
}

// SweepOrphanedVideoUploads deletes host placeholders for upload sessions
// that never reached committed. A create-then-crash or an upload whose
// database write failed both leave such sessions behind.
func (m *CronManager) SweepOrphanedVideoUploads() (string, error) {
	cutoff := time.Now().Add(-orphanAge)

	var sessions []model.VideoUpload
	err := m.db.
		Where("status IN ?", []model.VideoUploadStatus{
			model.VideoUploadStatusPending,
			model.VideoUploadStatusUploaded,
			model.VideoUploadStatusFailed,
		}).
		Where("updated_at < ?", cutoff).
		Find(&sessions).Error
	if err != nil {
		return "", err
	}

	swept := 0
	for _, session := range sessions {
		if session.GUID != "" && m.bunny != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := m.bunny.DeleteVideo(ctx, session.GUID)
			cancel()
			if err != nil {
				log.Printf("[CRON] could not delete host video %s: %v", session.GUID, err)
				continue
			}
		}
		if err := m.db.Delete(&model.VideoUpload{}, session.ID).Error; err != nil {
			log.Printf("[CRON] could not delete upload session %d: %v", session.ID, err)
			continue
		}
		swept++
	}

	return fmt.Sprintf("swept %d of %d orphaned sessions", swept, len(sessions)), nil
}

// CleanupExpiredTokens removes expired blacklist entries
func (m *CronManager) CleanupExpiredTokens() (string, error) {
	res := m.db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
	if res.Error != nil {
		return "", res.Error
	}
	return fmt.Sprintf("removed %d expired tokens", res.RowsAffected), nil
}

// CleanupCronJobLogs trims job log rows older than 30 days
func (m *CronManager) CleanupCronJobLogs() (string, error) {
	cutoff := time.Now().AddDate(0, 0, -30)
	res := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if res.Error != nil {
		return "", res.Error
	}
	return fmt.Sprintf("removed %d old job logs", res.RowsAffected), nil
}
