package controller

import (
	"context"
	"growth_assessment/internal/service"
	"growth_assessment/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	componentUp       = "up"
	componentDown     = "down"
	componentDisabled = "disabled"

	healthTimeout = 2 * time.Second
)

// HealthController reports the state of the service and its dependencies.
// DB and Redis are nil when disabled.
type HealthController struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Advice *service.AdviceService
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, advice *service.AdviceService) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Advice: advice}
}

func (c *HealthController) database(ctx context.Context) string {
	if c.DB == nil {
		return componentDisabled
	}
	sqlDB, err := c.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return componentDown
	}
	return componentUp
}

func (c *HealthController) redis(ctx context.Context) string {
	if c.Redis == nil {
		return componentDisabled
	}
	if c.Redis.Ping(ctx).Err() != nil {
		return componentDown
	}
	return componentUp
}

func (c *HealthController) backend(ctx context.Context) string {
	if c.Advice.Ping(ctx) != nil {
		return componentDown
	}
	return componentUp
}

// @Summary 健康检查
// @Description 检查服务状态. The advice backend being down degrades but does not fail the check.
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	components := gin.H{
		"database": c.database(reqCtx),
		"redis":    c.redis(reqCtx),
		"backend":  c.backend(reqCtx),
	}

	status := "ok"
	if components["backend"] == componentDown {
		status = "degraded"
	}
	if components["database"] == componentDown || components["redis"] == componentDown {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "Service unavailable",
			Data:    gin.H{"status": "down", "components": components},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     status,
		"components": components,
	})
}
