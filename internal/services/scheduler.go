package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	monthlyResetSpec = "0 0 1 * *"
	trialSweepSpec   = "0 6 * * *"

	lockMonthlyReset = "monthly_usage_reset"
	lockTrialSweep   = "trial_notification_sweep"
)

// Scheduler runs the periodic usage and notification jobs. Each run takes a
// database lock keyed by its period so only one replica does the work.
type Scheduler struct {
	db       *gorm.DB
	usage    *UsageService
	users    *GormUserStore
	queue    TaskQueue
	cron     *cron.Cron
	instance string
	now      func() time.Time
}

func NewScheduler(db *gorm.DB, usage *UsageService, users *GormUserStore, queue TaskQueue) *Scheduler {
	host, _ := os.Hostname()
	return &Scheduler{
		db:       db,
		usage:    usage,
		users:    users,
		queue:    queue,
		instance: fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(monthlyResetSpec, func() {
		if err := s.ResetMonthlyUsage(context.Background()); err != nil {
			logger.Errorf("[Scheduler] Monthly reset failed: %v", err)
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(trialSweepSpec, func() {
		if _, err := s.SweepTrials(context.Background()); err != nil {
			logger.Errorf("[Scheduler] Trial sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infof("[Scheduler] Started (monthly reset %q, trial sweep %q)", monthlyResetSpec, trialSweepSpec)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ResetMonthlyUsage zeroes monthly counters once per calendar month.
func (s *Scheduler) ResetMonthlyUsage(ctx context.Context) error {
	now := s.now()
	ok, err := s.tryLock(ctx, lockMonthlyReset, now.Format("2006-01"), 31*24*time.Hour)
	if err != nil || !ok {
		return err
	}
	n, err := s.usage.ResetMonthly(ctx)
	if err != nil {
		return err
	}
	logger.Infof("[Scheduler] Reset monthly usage for %d users", n)
	return nil
}

// SweepTrials queues notification regeneration for users whose trial ends
// soon or just ended, so the change shows up without any activity.
func (s *Scheduler) SweepTrials(ctx context.Context) (int, error) {
	now := s.now()
	ok, err := s.tryLock(ctx, lockTrialSweep, now.Format("2006-01-02"), 24*time.Hour)
	if err != nil || !ok {
		return 0, err
	}

	ids, err := s.users.TrialEndingBetween(ctx, now.Add(-48*time.Hour), now.Add(trialEndingWindow+time.Hour))
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(&RegenerateTask{UserID: id, Reason: "sweep"}); err != nil {
			logger.Warnf("[Scheduler] Failed to queue regeneration for user %d: %v", id, err)
			continue
		}
		queued++
	}
	logger.Infof("[Scheduler] Trial sweep queued %d of %d users", queued, len(ids))
	return queued, nil
}

// tryLock claims name/key for this instance. Expired locks are reclaimed.
func (s *Scheduler) tryLock(ctx context.Context, name, key string, ttl time.Duration) (bool, error) {
	now := s.now()
	db := s.db.WithContext(ctx)

	if err := db.Where("lock_name = ? AND lock_key = ? AND expires_at < ?", name, key, now).
		Delete(&models.SchedulerLock{}).Error; err != nil {
		return false, err
	}

	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  s.instance,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		logger.Debugf("[Scheduler] %s/%s already claimed", name, key)
		return false, nil
	}
	return true, nil
}
