package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

const jobTimeout = 10 * time.Minute

// Job statuses stored in cron_job_logs.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Deps are the services the maintenance jobs drive.
type Deps struct {
	Blacklist         *auth.BlacklistService
	Auth              *services.AuthService
	Payments          *services.PaymentService
	Coupons           *services.CouponService
	Notifications     *services.NotificationService
	PendingPaymentTTL time.Duration
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
	deps Deps
	log  *logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, deps Deps, log *logger.Logger) *CronManager {
	if log == nil {
		log = logger.Nop()
	}
	if deps.PendingPaymentTTL <= 0 {
		deps.PendingPaymentTTL = 24 * time.Hour
	}

	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger)))

	return &CronManager{
		cron: c,
		db:   db,
		deps: deps,
		log:  log.With("component", "cron"),
	}
}

// jobFunc runs one job and returns a short summary for the job log.
type jobFunc func(ctx context.Context) (string, error)

type job struct {
	name     string
	schedule string
	run      jobFunc
}

func (m *CronManager) jobs() []job {
	return []job{
		// Every 15 minutes: fail payments stuck in pending
		{"fail_stale_payments", "0 */15 * * * *", m.FailStalePayments},
		// Every hour: deactivate coupons past valid_until
		{"deactivate_expired_coupons", "0 5 * * * *", m.DeactivateExpiredCoupons},
		// Every hour: drop expired blacklist entries, sessions and reset tokens
		{"cleanup_expired_tokens", "0 30 * * * *", m.CleanupExpiredTokens},
		// Daily at 2 AM: remove old read notifications
		{"cleanup_notifications", "0 0 2 * * *", m.CleanupOldNotifications},
		// Daily at 3 AM: prune the job log itself
		{"prune_job_logs", "0 0 3 * * *", m.PruneJobLogs},
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	for _, j := range m.jobs() {
		j := j
		if _, err := m.cron.AddFunc(j.schedule, func() { m.Run(j.name, j.run) }); err != nil {
			return err
		}
	}

	m.cron.Start()
	m.log.Info("cron jobs started", "jobs", len(m.cron.Entries()))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

// Run executes fn under a timeout and records it in cron_job_logs.
func (m *CronManager) Run(name string, fn jobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	entry := model.CronJobLog{
		JobName:   name,
		Status:    StatusRunning,
		StartedAt: started,
	}
	if err := m.db.WithContext(ctx).Create(&entry).Error; err != nil {
		m.log.Warn("failed to record job start", "job", name, "error", err)
	}

	message, err := fn(ctx)

	finished := time.Now()
	updates := map[string]interface{}{
		"completed_at": finished,
		"duration_ms":  finished.Sub(started).Milliseconds(),
		"message":      message,
	}
	if err != nil {
		m.log.Error("cron job failed", "job", name, "error", err)
		updates["status"] = StatusFailed
		updates["error_msg"] = err.Error()
	} else {
		m.log.Info("cron job completed", "job", name, "result", message)
		updates["status"] = StatusCompleted
	}

	if entry.ID == 0 {
		return
	}
	if err := m.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
		m.log.Warn("failed to record job result", "job", name, "error", err)
	}
}
