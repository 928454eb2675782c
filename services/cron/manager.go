package cron

import (
	"log"

	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	bunny *bunny.Client // nil when the video host is not configured
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, bunnyClient *bunny.Client) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		db:    db,
		bunny: bunnyClient,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 15 minutes: delete orphaned video placeholders on the host
	_, err := m.cron.AddFunc("0 */15 * * * *", func() {
		m.runJob("sweep_orphaned_video_uploads", m.SweepOrphanedVideoUploads)
	})
	if err != nil {
		return err
	}

	// Hourly: drop expired token blacklist entries
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.runJob("cleanup_expired_tokens", m.CleanupExpiredTokens)
	})
	if err != nil {
		return err
	}

	// Daily at 03:00: trim old cron job logs
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.runJob("cleanup_cron_job_logs", m.CleanupCronJobLogs)
	})
	return err
}
