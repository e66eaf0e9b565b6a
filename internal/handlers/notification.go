package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/middleware"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/response"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications; ?unread=true filters read ones out.
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	items, err := h.notifications.List(middleware.GetUserID(c), unreadOnly)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, items)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	if err := h.notifications.MarkRead(middleware.GetUserID(c), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// Refresh recomputes the caller's system notifications now.
func (h *NotificationHandler) Refresh(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notifications.Regenerate(c.Request.Context(), userID); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	items, err := h.notifications.List(userID, false)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, items)
}
