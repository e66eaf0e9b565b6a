package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/middleware"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/response"
	"gorm.io/gorm"
)

// UsageHandler provides the caller's usage counters and history.
type UsageHandler struct {
	usageService *services.UsageService
}

func NewUsageHandler(db *gorm.DB) *UsageHandler {
	return &UsageHandler{
		usageService: services.NewUsageService(db),
	}
}

// Summary returns counters against the plan allowance and per-tool usage.
func (h *UsageHandler) Summary(c *gin.Context) {
	summary, err := h.usageService.Summary(middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.ServerError(c, "failed to get usage: "+err.Error())
		return
	}
	response.Success(c, summary)
}

// Records returns paginated usage records, optionally for one tool.
func (h *UsageHandler) Records(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	resp, err := h.usageService.Records(middleware.GetUserID(c), c.Query("tool_id"), page, pageSize)
	if err != nil {
		response.ServerError(c, "failed to get usage records: "+err.Error())
		return
	}
	response.Success(c, resp)
}

// Stats returns outcome statistics and the per-tool breakdown for the last
// ?days= days (default 30).
func (h *UsageHandler) Stats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 || days > 365 {
		response.BadRequest(c, "days must be between 1 and 365")
		return
	}
	userID := middleware.GetUserID(c)
	since := time.Now().AddDate(0, 0, -days)

	stats, err := h.usageService.GetStats(userID, since)
	if err != nil {
		response.ServerError(c, "failed to get usage stats: "+err.Error())
		return
	}
	breakdown, err := h.usageService.GetToolBreakdown(userID, since)
	if err != nil {
		response.ServerError(c, "failed to get tool breakdown: "+err.Error())
		return
	}
	response.Success(c, gin.H{
		"days":  days,
		"stats": stats,
		"tools": breakdown,
	})
}
