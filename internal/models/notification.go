package models

import "time"

// Notification types produced by the regeneration pass.
const (
	NotificationTrialEnding  = "trial_ending"
	NotificationTrialExpired = "trial_expired"
	NotificationUsageWarning = "usage_warning"
	NotificationUsageLimit   = "usage_limit"
)

// Notification is a user-facing alert. Rows with Source "system" are owned by
// the regeneration pass and are replaced wholesale on every run. System rows
// set Slot to their type so a user holds at most one of each; admin rows
// leave it nil.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_notification_slot,priority:1" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Slot      *string   `gorm:"size:50;uniqueIndex:idx_notification_slot,priority:2" json:"-"`
	Title     string    `gorm:"size:200" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Source    string    `gorm:"size:20;default:system;index" json:"source"` // system, admin
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
