package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxErrorMessageLen = 500

// UsageCounters is the usage snapshot returned with every generation response.
type UsageCounters struct {
	TotalGenerations   int64 `json:"totalGenerations"`
	MonthlyGenerations int64 `json:"monthlyGenerations"`
}

// UsageEntry describes one finished dispatch attempt.
type UsageEntry struct {
	RequestID        string
	UserID           uint
	ToolID           string
	ToolName         string
	Input            map[string]any
	Payload          map[string]any
	Status           string
	AIGenerated      bool
	ErrorKind        string
	ErrorMessage     string
	ProcessingTimeMs int64
	At               time.Time
}

// UsageRecorder appends usage records and bumps the per-user counters.
type UsageRecorder struct {
	db *gorm.DB
	wg sync.WaitGroup
}

func NewUsageRecorder(db *gorm.DB) *UsageRecorder {
	return &UsageRecorder{db: db}
}

// Record writes one UsageRecord in the background and, when the attempt
// produced a payload, increments the user's counters. The returned counters
// are read back after the increment. Errors wrap ErrStorageUnavailable.
func (r *UsageRecorder) Record(ctx context.Context, entry UsageEntry) (UsageCounters, error) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	r.append(newUsageRecord(&entry))

	if len(entry.Payload) == 0 {
		return r.counters(ctx, entry.UserID)
	}
	return r.increment(ctx, entry.UserID, entry.ToolID, entry.At)
}

// Wait blocks until every background record write has finished.
func (r *UsageRecorder) Wait() {
	r.wg.Wait()
}

func (r *UsageRecorder) append(rec *models.UsageRecord) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.db.Create(rec).Error; err != nil {
			sideEffectFailures.WithLabelValues("usage_record").Inc()
			logger.Errorf("[Usage] Failed to record %s usage for user %d: %v", rec.ToolID, rec.UserID, err)
		}
	}()
}

func (r *UsageRecorder) increment(ctx context.Context, userID uint, toolID string, at time.Time) (UsageCounters, error) {
	var counters UsageCounters
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
			"total_generations":   gorm.Expr("total_generations + ?", 1),
			"monthly_generations": gorm.Expr("monthly_generations + ?", 1),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		usage := models.ToolUsage{UserID: userID, ToolID: toolID, UsageCount: 1, LastUsedAt: at}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "tool_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"usage_count":  gorm.Expr("usage_count + ?", 1),
				"last_used_at": at,
			}),
		}).Create(&usage).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Select("total_generations, monthly_generations").
			Where("id = ?", userID).
			Scan(&counters).Error
	})
	if err != nil {
		return UsageCounters{}, fmt.Errorf("%w: increment counters: %v", ErrStorageUnavailable, err)
	}
	return counters, nil
}

func (r *UsageRecorder) counters(ctx context.Context, userID uint) (UsageCounters, error) {
	var counters UsageCounters
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("total_generations, monthly_generations").
		Where("id = ?", userID).
		Scan(&counters).Error
	if err != nil {
		return UsageCounters{}, fmt.Errorf("%w: read counters: %v", ErrStorageUnavailable, err)
	}
	return counters, nil
}

func newUsageRecord(e *UsageEntry) *models.UsageRecord {
	rec := &models.UsageRecord{
		RequestID:        e.RequestID,
		UserID:           e.UserID,
		ToolID:           e.ToolID,
		ToolName:         e.ToolName,
		Input:            marshalOrEmpty(e.Input),
		ProcessingTimeMs: e.ProcessingTimeMs,
		Status:           e.Status,
		AIGenerated:      e.AIGenerated,
		ErrorKind:        e.ErrorKind,
		ErrorMessage:     truncate(e.ErrorMessage, maxErrorMessageLen),
		CreatedAt:        e.At,
	}
	if len(e.Payload) > 0 {
		out := marshalOrEmpty(e.Payload)
		rec.Output = &out
	}
	return rec
}

func marshalOrEmpty(v map[string]any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// truncate keeps at most n characters of s as valid UTF-8.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// UsageService serves the read side of usage accounting.
type UsageService struct {
	db *gorm.DB
}

func NewUsageService(db *gorm.DB) *UsageService {
	return &UsageService{db: db}
}

// UsageSummary is a user's counters against the plan allowance.
type UsageSummary struct {
	Plan               string             `json:"plan"`
	EffectivePlan      string             `json:"effective_plan"`
	MonthlyAllowance   int64              `json:"monthly_allowance"`
	TotalGenerations   int64              `json:"total_generations"`
	MonthlyGenerations int64              `json:"monthly_generations"`
	Remaining          int64              `json:"remaining"`
	TrialEndDate       *time.Time         `json:"trial_end_date,omitempty"`
	Tools              []models.ToolUsage `json:"tools"`
}

// Summary returns the user's counters and per-tool usage, most used first.
func (s *UsageService) Summary(userID uint) (*UsageSummary, error) {
	var user models.User
	if err := s.db.Preload("ToolUsage", func(db *gorm.DB) *gorm.DB {
		return db.Order("usage_count DESC, tool_id ASC")
	}).First(&user, userID).Error; err != nil {
		return nil, err
	}

	plan := EffectivePlan(&user)
	allowance := PlanAllowance(plan)
	summary := &UsageSummary{
		Plan:               user.Plan,
		EffectivePlan:      plan,
		MonthlyAllowance:   allowance,
		TotalGenerations:   user.TotalGenerations,
		MonthlyGenerations: user.MonthlyGenerations,
		Remaining:          max(allowance-user.MonthlyGenerations, 0),
		TrialEndDate:       user.TrialEndDate,
		Tools:              user.ToolUsage,
	}
	if summary.Tools == nil {
		summary.Tools = []models.ToolUsage{}
	}
	return summary, nil
}

type UsageRecordListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.UsageRecord `json:"items"`
}

// Records returns the user's usage records, newest first.
func (s *UsageService) Records(userID uint, toolID string, page, pageSize int) (*UsageRecordListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.UsageRecord{}).Where("user_id = ?", userID)
	if toolID != "" {
		query = query.Where("tool_id = ?", toolID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.UsageRecord
	if err := query.Order("created_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.UsageRecord{}
	}
	return &UsageRecordListResponse{Total: total, Page: page, PageSize: pageSize, Items: items}, nil
}

// UsageStats holds aggregated outcome statistics.
type UsageStats struct {
	TotalCalls      int64   `json:"total_calls"`
	SuccessCount    int64   `json:"success_count"`
	DegradedCount   int64   `json:"degraded_count"`
	ErrorCount      int64   `json:"error_count"`
	AIGeneratedRate float64 `json:"ai_generated_rate"`
	AvgProcessingMs float64 `json:"avg_processing_ms"`
}

// GetStats aggregates usage records. userID 0 covers every user.
func (s *UsageService) GetStats(userID uint, since time.Time) (*UsageStats, error) {
	query := s.scoped(userID, since)

	var stats UsageStats
	var aiGenerated int64
	row := query.Select(
		"COUNT(*), " +
			"COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0), " +
			"COALESCE(SUM(CASE WHEN status = 'degraded' THEN 1 ELSE 0 END), 0), " +
			"COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0), " +
			"COALESCE(SUM(CASE WHEN ai_generated THEN 1 ELSE 0 END), 0), " +
			"COALESCE(AVG(processing_time_ms), 0)",
	).Row()
	if err := row.Scan(&stats.TotalCalls, &stats.SuccessCount, &stats.DegradedCount, &stats.ErrorCount, &aiGenerated, &stats.AvgProcessingMs); err != nil {
		return nil, err
	}

	if stats.TotalCalls > 0 {
		stats.AIGeneratedRate = float64(aiGenerated) / float64(stats.TotalCalls) * 100
	}
	return &stats, nil
}

// ToolBreakdown holds usage grouped by tool.
type ToolBreakdown struct {
	ToolID          string  `json:"tool_id"`
	ToolName        string  `json:"tool_name"`
	Calls           int64   `json:"calls"`
	DegradedCount   int64   `json:"degraded_count"`
	AvgProcessingMs float64 `json:"avg_processing_ms"`
}

// GetToolBreakdown returns per-tool call counts, busiest first.
func (s *UsageService) GetToolBreakdown(userID uint, since time.Time) ([]ToolBreakdown, error) {
	var results []ToolBreakdown
	err := s.scoped(userID, since).Select(
		"tool_id, MAX(tool_name) as tool_name, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(CASE WHEN status = 'degraded' THEN 1 ELSE 0 END), 0) as degraded_count, " +
			"COALESCE(AVG(processing_time_ms), 0) as avg_processing_ms",
	).Group("tool_id").Order("calls DESC, tool_id ASC").Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []ToolBreakdown{}
	}
	return results, nil
}

func (s *UsageService) scoped(userID uint, since time.Time) *gorm.DB {
	query := s.db.Model(&models.UsageRecord{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	return query
}

// ResetMonthly zeroes every user's monthly counter.
func (s *UsageService) ResetMonthly(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("monthly_generations > ?", 0).
		UpdateColumn("monthly_generations", 0)
	return res.RowsAffected, res.Error
}
