package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/config"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/handlers"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/utils"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"gorm.io/gorm"
)

const limiterJanitorInterval = 5 * time.Minute

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg           *config.Config
	db            *gorm.DB
	redis         *redis.Client
	registry      *tools.Registry
	users         *services.GormUserStore
	hub           *services.SSEHub
	taskQueue     services.TaskQueue
	worker        *services.Worker
	scheduler     *services.Scheduler
	recorder      *services.UsageRecorder
	notifications *services.NotificationService
	llmConfigs    *services.LLMConfigService
	generation    *services.GenerationService
	stopJanitors  context.CancelFunc
}

// bootstrap initializes all application dependencies: database, limiters,
// generation client, queue, worker and scheduler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()
	if err := models.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	app := &appServices{
		cfg:      cfg,
		db:       db,
		registry: tools.Default(),
		users:    services.NewUserStore(db),
		hub:      services.NewSSEHub(),
		recorder: services.NewUsageRecorder(db),
	}

	// Redis backs the distributed limiter; the task queue dials its own connection.
	var scripter services.RedisScripter
	if cfg.Redis.Enabled {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warnf("[Bootstrap] Redis ping failed, limiter stays in memory: %v", err)
		} else {
			scripter = app.redis
		}
		cancel()
	}

	limiters := services.NewLimiters(&cfg.RateLimit, scripter)
	janitorCtx, stop := context.WithCancel(context.Background())
	app.stopJanitors = stop
	for _, l := range []services.Limiter{limiters.Identity, limiters.Global} {
		if mem, ok := l.(*services.MemoryLimiter); ok {
			go mem.RunJanitor(janitorCtx, limiterJanitorInterval)
		}
	}

	// Notifications: regenerated through the task queue.
	app.notifications = services.NewNotificationService(db, app.hub)
	app.taskQueue = services.NewTaskQueue(&cfg.Redis)
	if syncQueue, ok := app.taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(app.notifications.Process)
	}
	if app.taskQueue.IsAsync() {
		app.worker = services.NewWorker(&cfg.Redis)
		if app.worker != nil {
			app.worker.SetProcessor(app.notifications.Process)
			if err := app.worker.Start(); err != nil {
				logger.Errorf("[Bootstrap] Failed to start worker: %v", err)
			}
		}
	}

	app.llmConfigs = services.NewLLMConfigService(db)
	client := services.NewLLMClient(&cfg.OpenAI, app.llmConfigs, cfg.Breaker)

	app.generation = services.NewGenerationService(services.GenerationDeps{
		Registry: app.registry,
		Limiters: limiters,
		Users:    app.users,
		Client:   client,
		Usage:    app.recorder,
		Notifier: services.NewEmitter(app.taskQueue),
	})

	app.scheduler = services.NewScheduler(db, services.NewUsageService(db), app.users, app.taskQueue)
	if err := app.scheduler.Start(); err != nil {
		logger.Errorf("[Bootstrap] Failed to start scheduler: %v", err)
	}

	handlers.RegisterRuntimeGauges(prometheus.DefaultRegisterer, db, app.taskQueue, app.hub)
	return app
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	s.stopJanitors()
	logger.Info().Msg("Scheduler and limiter janitors stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	s.recorder.Wait()
	if s.redis != nil {
		s.redis.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}
