package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/services"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"gorm.io/gorm"
)

var startTime = time.Now()

// RegisterRuntimeGauges exposes process and storage state next to the
// generation metrics. Gauges are evaluated on every scrape.
func RegisterRuntimeGauges(reg prometheus.Registerer, db *gorm.DB, queue services.TaskQueue, hub *services.SSEHub) {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_uptime_seconds",
			Help: "Time since server start in seconds",
		}, func() float64 { return time.Since(startTime).Seconds() }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_sse_active_clients",
			Help: "Number of active SSE connections",
		}, func() float64 { return float64(hub.ClientCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_queue_async_enabled",
			Help: "Whether the Redis task queue is in use (1=yes, 0=no)",
		}, func() float64 {
			if queue != nil && queue.IsAsync() {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_db_open_connections",
			Help: "Number of open DB connections",
		}, func() float64 {
			sqlDB, err := db.DB()
			if err != nil {
				return 0
			}
			return float64(sqlDB.Stats().OpenConnections)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_users_active",
			Help: "Number of active users",
		}, func() float64 {
			var n int64
			db.Model(&models.User{}).Where("is_active = ?", true).Count(&n)
			return float64(n)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketing_generations_24h",
			Help: "Usage records written in the last 24 hours",
		}, func() float64 {
			var n int64
			db.Model(&models.UsageRecord{}).Where("created_at >= ?", time.Now().Add(-24*time.Hour)).Count(&n)
			return float64(n)
		}),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				logger.Warnf("[Metrics] Failed to register gauge: %v", err)
			}
		}
	}
}

// Metrics serves the default Prometheus registry.
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
