package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns an isolated in-memory database with every table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache sqlite allows one writer at a time; serialize through one connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

// createUser inserts a user on plan. Trial users get a trial ending at trialEnd.
func createUser(t *testing.T, db *gorm.DB, email, plan string, trialEnd *time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         email,
		Plan:         plan,
		TrialEndDate: trialEnd,
		IsActive:     true,
	}
	if plan != models.PlanFreeTrial {
		user.SubscriptionStatus = models.SubscriptionActive
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func timePtr(t time.Time) *time.Time { return &t }
