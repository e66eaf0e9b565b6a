package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQueue collects enqueued tasks.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []RegenerateTask
	err   error
}

func (q *recordingQueue) Enqueue(task *RegenerateTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, *task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) userIDs() []uint {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]uint, 0, len(q.tasks))
	for _, t := range q.tasks {
		ids = append(ids, t.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *recordingQueue) {
	t.Helper()
	db := newTestDB(t)
	q := &recordingQueue{}
	s := NewScheduler(db, NewUsageService(db), NewUserStore(db), q)
	s.now = func() time.Time { return now }
	return s, q
}

func TestScheduler_SweepTrials(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s, q := newTestScheduler(t, now)

	endingSoon := createUser(t, s.db, "soon@example.com", models.PlanFreeTrial, timePtr(now.Add(48*time.Hour)))
	justEnded := createUser(t, s.db, "ended@example.com", models.PlanFreeTrial, timePtr(now.Add(-12*time.Hour)))
	createUser(t, s.db, "fresh@example.com", models.PlanFreeTrial, timePtr(now.Add(6*24*time.Hour)))
	createUser(t, s.db, "old@example.com", models.PlanFreeTrial, timePtr(now.Add(-30*24*time.Hour)))
	createUser(t, s.db, "paid@example.com", models.PlanPro, nil)

	n, err := s.SweepTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint{endingSoon.ID, justEnded.ID}, q.userIDs())
	assert.Equal(t, "sweep", q.tasks[0].Reason)

	// A second run on the same day is claimed already.
	n, err = s.SweepTrials(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, q.userIDs(), 2)
}

func TestScheduler_SweepTrialsQueueFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s, q := newTestScheduler(t, now)
	q.err = errors.New("redis down")
	createUser(t, s.db, "soon@example.com", models.PlanFreeTrial, timePtr(now.Add(24*time.Hour)))

	n, err := s.SweepTrials(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_ResetMonthlyUsageOncePerMonth(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(t, now)
	user := createUser(t, s.db, "pro@example.com", models.PlanPro, nil)
	require.NoError(t, s.db.Model(user).UpdateColumn("monthly_generations", 42).Error)

	require.NoError(t, s.ResetMonthlyUsage(context.Background()))
	var got models.User
	require.NoError(t, s.db.First(&got, user.ID).Error)
	assert.Zero(t, got.MonthlyGenerations)

	// Usage accrues again; a duplicate trigger in the same month does nothing.
	require.NoError(t, s.db.Model(user).UpdateColumn("monthly_generations", 3).Error)
	require.NoError(t, s.ResetMonthlyUsage(context.Background()))
	require.NoError(t, s.db.First(&got, user.ID).Error)
	assert.Equal(t, int64(3), got.MonthlyGenerations)

	// Next month resets.
	s.now = func() time.Time { return now.AddDate(0, 1, 0) }
	require.NoError(t, s.ResetMonthlyUsage(context.Background()))
	require.NoError(t, s.db.First(&got, user.ID).Error)
	assert.Zero(t, got.MonthlyGenerations)
}

func TestScheduler_ExpiredLockIsReclaimed(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(t, now)

	ok, err := s.tryLock(context.Background(), "job", "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.tryLock(context.Background(), "job", "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, err = s.tryLock(context.Background(), "job", "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScheduler_StartStop(t *testing.T) {
	s, _ := newTestScheduler(t, time.Now())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestUserStore_FindUser(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStore(db)
	user := createUser(t, db, "a@example.com", models.PlanPro, nil)

	got, err := store.FindUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, got.Plan)

	_, err = store.FindUser(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, db.Model(user).UpdateColumn("is_active", false).Error)
	_, err = store.FindUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
