package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
)

const (
	notificationRetention = 90 * 24 * time.Hour
	jobLogRetention       = 30 * 24 * time.Hour
)

// FailStalePayments marks payments pending longer than PendingPaymentTTL as failed.
func (m *CronManager) FailStalePayments(ctx context.Context) (string, error) {
	if m.deps.Payments == nil {
		return "skipped", nil
	}
	n, err := m.deps.Payments.FailStalePending(ctx, m.deps.PendingPaymentTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("failed %d stale payments", n), nil
}

// DeactivateExpiredCoupons switches off coupons whose validity window has closed.
func (m *CronManager) DeactivateExpiredCoupons(ctx context.Context) (string, error) {
	if m.deps.Coupons == nil {
		return "skipped", nil
	}
	n, err := m.deps.Coupons.DeactivateExpired(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("deactivated %d coupons", n), nil
}

// CleanupExpiredTokens removes blacklist entries past their expiry along with
// dead sessions and reset tokens.
func (m *CronManager) CleanupExpiredTokens(ctx context.Context) (string, error) {
	var tokens, sessions int64
	var err error

	if m.deps.Blacklist != nil {
		if tokens, err = m.deps.Blacklist.CleanupExpiredTokens(ctx); err != nil {
			return "", fmt.Errorf("blacklist cleanup: %w", err)
		}
	}
	if m.deps.Auth != nil {
		if sessions, err = m.deps.Auth.CleanupExpired(ctx); err != nil {
			return "", fmt.Errorf("session cleanup: %w", err)
		}
	}
	return fmt.Sprintf("removed %d blacklisted tokens, %d sessions and reset tokens", tokens, sessions), nil
}

// CleanupOldNotifications deletes read notifications older than 90 days.
func (m *CronManager) CleanupOldNotifications(ctx context.Context) (string, error) {
	if m.deps.Notifications == nil {
		return "skipped", nil
	}
	n, err := m.deps.Notifications.CleanupOldNotifications(ctx, notificationRetention)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted %d notifications", n), nil
}

// PruneJobLogs deletes job log rows older than 30 days.
func (m *CronManager) PruneJobLogs(ctx context.Context) (string, error) {
	res := m.db.WithContext(ctx).
		Where("started_at < ?", time.Now().Add(-jobLogRetention)).
		Delete(&model.CronJobLog{})
	if res.Error != nil {
		return "", res.Error
	}
	return fmt.Sprintf("pruned %d job logs", res.RowsAffected), nil
}
