package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	notificationSourceSystem = "system"

	trialEndingWindow   = 3 * 24 * time.Hour
	usageWarningPercent = 80
)

// Notifier recomputes a user's notification set. Implementations must be
// idempotent.
type Notifier interface {
	Regenerate(ctx context.Context, userID uint) error
}

// NotificationService owns the system notifications derived from a user's
// trial window and monthly usage.
type NotificationService struct {
	db  *gorm.DB
	hub *SSEHub
	now func() time.Time
}

// NewNotificationService builds the service. hub may be nil.
func NewNotificationService(db *gorm.DB, hub *SSEHub) *NotificationService {
	return &NotificationService{db: db, hub: hub, now: time.Now}
}

// Regenerate replaces the user's system notifications with the set implied by
// their current state. Unchanged notifications keep their read flag. Errors
// wrap ErrNotificationUnavailable.
func (s *NotificationService) Regenerate(ctx context.Context, userID uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %w", ErrNotificationUnavailable, ErrUserNotFound)
		}
		return fmt.Errorf("%w: load user: %v", ErrNotificationUnavailable, err)
	}

	desired := systemNotifications(&user, s.now())

	var types []string
	var unread int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Notification
		if err := tx.Where("user_id = ? AND source = ?", userID, notificationSourceSystem).Find(&existing).Error; err != nil {
			return err
		}

		keep := make(map[string]bool, len(existing))
		var stale []uint
		for _, n := range existing {
			if want, ok := desired[n.Type]; ok && !keep[n.Type] && want.Message == n.Message {
				keep[n.Type] = true
				continue
			}
			stale = append(stale, n.ID)
		}
		if len(stale) > 0 {
			if err := tx.Delete(&models.Notification{}, stale).Error; err != nil {
				return err
			}
		}

		for _, typ := range notificationOrder {
			n, ok := desired[typ]
			if !ok {
				continue
			}
			types = append(types, typ)
			if keep[typ] {
				continue
			}
			// A concurrent regeneration may have inserted the same slot.
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&n).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationUnavailable, err)
	}

	if s.hub != nil {
		s.hub.Publish(NotificationEvent{UserID: userID, UnreadCount: unread, Types: types})
	}
	logger.Debugf("[Notification] Regenerated user %d: %v", userID, types)
	return nil
}

// Process adapts Regenerate to the task queue.
func (s *NotificationService) Process(ctx context.Context, task *RegenerateTask) error {
	return s.Regenerate(ctx, task.UserID)
}

var notificationOrder = []string{
	models.NotificationTrialExpired,
	models.NotificationTrialEnding,
	models.NotificationUsageLimit,
	models.NotificationUsageWarning,
}

// systemNotifications derives the notifications a user should currently see,
// keyed by type.
func systemNotifications(user *models.User, now time.Time) map[string]models.Notification {
	out := make(map[string]models.Notification)
	add := func(typ, title, msg string) {
		slot := typ
		out[typ] = models.Notification{
			UserID:  user.ID,
			Type:    typ,
			Slot:    &slot,
			Title:   title,
			Message: msg,
			Source:  notificationSourceSystem,
		}
	}

	plan := EffectivePlan(user)
	if plan == models.PlanFreeTrial {
		if user.TrialExpired(now) {
			add(models.NotificationTrialExpired, "Your free trial has ended",
				"Upgrade to a paid plan to keep generating content.")
			return out
		}
		if left := user.TrialEndDate.Sub(now); left <= trialEndingWindow {
			days := int(math.Ceil(left.Hours() / 24))
			add(models.NotificationTrialEnding, "Your free trial is ending soon",
				fmt.Sprintf("Your free trial ends in %d %s. Upgrade to keep access to every tool.", days, plural(days, "day", "days")))
		}
	}

	allowance := PlanAllowance(plan)
	used := user.MonthlyGenerations
	switch {
	case used >= allowance:
		add(models.NotificationUsageLimit, "Monthly generation limit reached",
			fmt.Sprintf("You have used all %d generations included in your plan this month.", allowance))
	case used*100 >= allowance*usageWarningPercent:
		add(models.NotificationUsageWarning, "You are close to your monthly limit",
			fmt.Sprintf("You have used %d of %d generations this month.", used, allowance))
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var items []models.Notification
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, id uint) error {
	res := s.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Emitter is the dispatcher-facing Notifier. It hands regeneration to the task
// queue so the caller never waits on it.
type Emitter struct {
	queue TaskQueue
}

func NewEmitter(queue TaskQueue) *Emitter {
	return &Emitter{queue: queue}
}

func (e *Emitter) Regenerate(ctx context.Context, userID uint) error {
	if err := e.queue.Enqueue(&RegenerateTask{UserID: userID, Reason: "dispatch"}); err != nil {
		return fmt.Errorf("%w: enqueue: %v", ErrNotificationUnavailable, err)
	}
	return nil
}
