package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/handlers"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/middleware"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) *middleware.RateLimiter {
	flood := middleware.NewRateLimiter(svc.cfg.RateLimit.HTTP.RPS, svc.cfg.RateLimit.HTTP.Burst)

	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(svc.db, svc.taskQueue, svc.hub)
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics())

	toolHandler := handlers.NewToolHandler(svc.generation, svc.registry, svc.generation.Gate(), svc.users)
	usageHandler := handlers.NewUsageHandler(svc.db)
	notificationHandler := handlers.NewNotificationHandler(svc.notifications)
	sseHandler := handlers.NewSSEHandler(svc.hub)
	llmConfigHandler := handlers.NewLLMConfigHandler(svc.llmConfigs)

	api := r.Group("/api", flood.Middleware())
	{
		// Anonymous callers reach the dispatcher so they are limited by IP.
		api.POST("/tools/:toolId/generate", middleware.OptionalAuth(), toolHandler.Generate)
		api.GET("/tools/:toolId", toolHandler.Get)

		// SSE takes the token from the query string.
		api.GET("/events/notifications", middleware.StreamAuth(), sseHandler.StreamNotifications)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/tools", toolHandler.List)

			protected.GET("/usage", usageHandler.Summary)
			protected.GET("/usage/records", usageHandler.Records)
			protected.GET("/usage/stats", usageHandler.Stats)

			protected.GET("/notifications", notificationHandler.List)
			protected.POST("/notifications/refresh", notificationHandler.Refresh)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/llm-configs", llmConfigHandler.List)
			admin.POST("/llm-configs", llmConfigHandler.Create)
			admin.POST("/llm-configs/:id/default", llmConfigHandler.SetDefault)
		}
	}
	return flood
}
