package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"gorm.io/gorm"
)

// UserStore loads the plan, trial and counter state the engine reads.
type UserStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// GormUserStore is the database-backed UserStore.
type GormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// FindUser returns ErrUserNotFound for missing or deactivated users.
func (s *GormUserStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", ErrStorageUnavailable, err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// TrialEndingBetween returns active users whose trial ends in [from, to).
func (s *GormUserStore) TrialEndingBetween(ctx context.Context, from, to time.Time) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ? AND trial_end_date >= ? AND trial_end_date < ?", true, from, to).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
