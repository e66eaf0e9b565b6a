package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription plans, ordered from least to most capable.
const (
	PlanFreeTrial = "free_trial"
	PlanStarter   = "starter"
	PlanPro       = "pro"
	PlanAgency    = "agency"
)

// Subscription statuses mirrored from the payment processor.
const (
	SubscriptionActive    = "active"
	SubscriptionTrialing  = "trialing"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// User is the subset of the account document the generation engine reads and
// updates: plan, trial window and rolling usage counters.
type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Email              string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name               string         `gorm:"size:100" json:"name"`
	Role               string         `gorm:"size:50;default:user" json:"role"` // admin, user
	Plan               string         `gorm:"size:50;default:free_trial;index" json:"plan"`
	SubscriptionStatus string         `gorm:"size:50" json:"subscription_status"`
	TrialStartDate     *time.Time     `json:"trial_start_date"`
	TrialEndDate       *time.Time     `json:"trial_end_date"`
	TotalGenerations   int64          `gorm:"default:0" json:"total_generations"`
	MonthlyGenerations int64          `gorm:"default:0" json:"monthly_generations"`
	ToolUsage          []ToolUsage    `gorm:"foreignKey:UserID" json:"tool_usage,omitempty"`
	IsActive           bool           `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// HasPaidPlan reports whether the user holds a paid plan in good standing.
func (u *User) HasPaidPlan() bool {
	if u.Plan == "" || u.Plan == PlanFreeTrial {
		return false
	}
	return u.SubscriptionStatus == SubscriptionActive || u.SubscriptionStatus == SubscriptionTrialing
}

// TrialExpired reports whether the trial window closed before now. A user with
// no recorded trial end is treated as expired.
func (u *User) TrialExpired(now time.Time) bool {
	if u.TrialEndDate == nil {
		return true
	}
	return !now.Before(*u.TrialEndDate)
}

// ToolUsage is the per-tool slice of a user's usage counters.
type ToolUsage struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"uniqueIndex:idx_tool_usage_user_tool;not null" json:"-"`
	ToolID     string    `gorm:"uniqueIndex:idx_tool_usage_user_tool;size:64;not null" json:"tool_id"`
	UsageCount int64     `gorm:"default:0" json:"usage_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}

func (ToolUsage) TableName() string { return "tool_usages" }
