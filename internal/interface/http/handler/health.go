package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/response"
)

const healthTimeout = 2 * time.Second

// HealthHandler 存活与就绪检查
type HealthHandler struct {
	db      *gorm.DB
	redis   *goredis.Client
	started time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *gorm.DB, redis *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, started: time.Now()}
}

// Ping 存活检查
// @Summary      存活检查
// @Tags         运维
// @Produce      plain
// @Success      200 {string} string "pong"
// @Router       /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Health 就绪检查：数据库不可用时返回503，Redis不可用只降级
// @Summary      就绪检查
// @Tags         运维
// @Produce      json
// @Success      200 {object} response.Response{data=dto.HealthResponse}
// @Failure      503 {object} response.ErrorBody "数据库不可用"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := gormdb.Ping(ctx, h.db); err != nil {
		response.Error(c, apperrors.ErrServiceUnavailable.WithMessage("数据库不可用").WithErr(err))
		return
	}

	resp := &dto.HealthResponse{
		Status:   "ok",
		Database: "up",
		Redis:    "up",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		resp.Status = "degraded"
		resp.Redis = "down"
	}
	response.Success(c, resp)
}
