package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/middleware"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/response"
)

// statusClientClosed is logged for callers that hung up before the response.
const statusClientClosed = 499

// Generator runs one tool invocation.
type Generator interface {
	Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerationOutcome, error)
}

// ToolHandler serves the tool catalogue and the generation endpoint.
type ToolHandler struct {
	generator Generator
	registry  *tools.Registry
	gate      *services.EntitlementGate
	users     services.UserStore
}

// NewToolHandler shares gate with the dispatcher so the catalogue and the
// generation endpoint agree on availability.
func NewToolHandler(generator Generator, registry *tools.Registry, gate *services.EntitlementGate, users services.UserStore) *ToolHandler {
	return &ToolHandler{
		generator: generator,
		registry:  registry,
		gate:      gate,
		users:     users,
	}
}

type generateBody struct {
	Input map[string]any `json:"input"`
}

// GenerateResponse is the body of a successful or degraded generation.
type GenerateResponse struct {
	Success          bool                   `json:"success"`
	Output           map[string]any         `json:"output"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
	AIGenerated      bool                   `json:"aiGenerated"`
	Usage            services.UsageCounters `json:"usage"`
	RequestID        string                 `json:"requestId"`
	ToolID           string                 `json:"toolId"`
	PatchedSections  []string               `json:"patchedSections,omitempty"`
}

// Generate handles POST /api/tools/:toolId/generate.
func (h *ToolHandler) Generate(c *gin.Context) {
	var body generateBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	outcome, err := h.generator.Generate(c.Request.Context(), services.GenerateRequest{
		RequestID:   middleware.GetRequestID(c),
		ToolID:      c.Param("toolId"),
		UserID:      middleware.GetUserID(c),
		ClientIP:    c.ClientIP(),
		Input:       body.Input,
		RequestedAt: time.Now(),
	})
	if err != nil {
		renderGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Success:          true,
		Output:           outcome.Payload,
		ProcessingTimeMs: outcome.ProcessingTimeMs,
		AIGenerated:      outcome.AIGenerated,
		Usage:            outcome.Usage,
		RequestID:        outcome.RequestID,
		ToolID:           outcome.ToolID,
		PatchedSections:  outcome.Patched,
	})
}

// renderGenerationError maps dispatcher rejections to HTTP errors.
func renderGenerationError(c *gin.Context, err error) {
	var rateErr *services.RateLimitError
	var notAvailable *services.ToolNotAvailableError
	switch {
	case errors.As(err, &rateErr):
		response.Error(c, response.NewTooManyRequests("rate_limited", "Too many requests, please try again later").
			WithDetails(gin.H{"scope": rateErr.Scope}))
	case errors.As(err, &notAvailable):
		response.Error(c, response.NewForbidden("not_entitled", notAvailable.Error()).
			WithDetails(gin.H{"allowedTools": notAvailable.Allowed, "requiredPlan": notAvailable.RequiredPlan}))
	case errors.Is(err, services.ErrTrialExpired):
		response.Error(c, response.NewForbidden("trial_expired", "Your free trial has expired. Please upgrade to continue."))
	case errors.Is(err, services.ErrUnknownTool):
		response.NotFound(c, "tool not found")
	case errors.Is(err, services.ErrUserNotFound):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosed)
	default:
		logger.Errorf("[Tools] Generation failed: %v", err)
		response.ServerError(c, "generation failed")
	}
}

// ToolView is one catalogue entry as seen by the caller.
type ToolView struct {
	tools.Definition
	Available    bool   `json:"available"`
	RequiredPlan string `json:"requiredPlan"`
}

// List handles GET /api/tools.
func (h *ToolHandler) List(c *gin.Context) {
	user, err := h.users.FindUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		renderGenerationError(c, err)
		return
	}

	available := make(map[string]bool)
	for _, id := range h.gate.AvailableTools(user, time.Now()) {
		available[id] = true
	}

	defs := h.registry.Definitions()
	views := make([]ToolView, 0, len(defs))
	for _, def := range defs {
		required := def.MinPlan
		if def.IncludedInTrial {
			required = models.PlanFreeTrial
		}
		views = append(views, ToolView{Definition: def, Available: available[def.ID], RequiredPlan: required})
	}
	response.Success(c, gin.H{
		"plan":  services.EffectivePlan(user),
		"tools": views,
	})
}

// Get handles GET /api/tools/:toolId and includes the output schema.
func (h *ToolHandler) Get(c *gin.Context) {
	tool, ok := h.registry.Lookup(c.Param("toolId"))
	if !ok {
		response.NotFound(c, "tool not found")
		return
	}
	response.Success(c, gin.H{
		"tool":   tool.Definition(),
		"schema": tool.Schema(),
	})
}
