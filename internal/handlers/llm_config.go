package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/response"
	"gorm.io/gorm"
)

// LLMConfigHandler lets admins manage the stored model endpoints.
type LLMConfigHandler struct {
	llmConfigService *services.LLMConfigService
}

func NewLLMConfigHandler(svc *services.LLMConfigService) *LLMConfigHandler {
	return &LLMConfigHandler{llmConfigService: svc}
}

func (h *LLMConfigHandler) List(c *gin.Context) {
	configs, err := h.llmConfigService.List()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, configs)
}

func (h *LLMConfigHandler) Create(c *gin.Context) {
	var req services.CreateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	config, err := h.llmConfigService.Create(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, config)
}

func (h *LLMConfigHandler) SetDefault(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid config id")
		return
	}

	if err := h.llmConfigService.SetDefault(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "config not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "default config updated"})
}
