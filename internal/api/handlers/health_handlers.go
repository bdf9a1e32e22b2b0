package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/infrastructure/cache"
	"github.com/relayer-service/relayer_service/internal/infrastructure/database"
)

// HealthHandlers reports service, database and cache health.
type HealthHandlers struct {
	db        *sqlx.DB
	redis     cache.RedisClient
	logger    *zap.Logger
	startTime time.Time
}

// NewHealthHandlers creates new health handlers
func NewHealthHandlers(db *sqlx.DB, redis cache.RedisClient, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis, logger: logger, startTime: time.Now()}
}

// Health reports overall service health. The database is load-bearing;
// the cache degrades the response to "degraded" rather than failing it.
func (h *HealthHandlers) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := "healthy"
	statusCode := http.StatusOK
	checks := gin.H{}

	if err := database.HealthCheck(h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			h.logger.Warn("Redis health check failed", zap.Error(err))
			checks["redis"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["redis"] = "healthy"
		}
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// Liveness is a bare liveness probe.
func (h *HealthHandlers) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
