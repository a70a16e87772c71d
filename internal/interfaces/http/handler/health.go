package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker 依赖探活
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	pg      HealthChecker
	redis   HealthChecker
}

// NewHealthHandler 创建健康检查处理器；redis 为 nil 时视为未启用
func NewHealthHandler(version string, pg, redis HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, pg: pg, redis: redis}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 就绪检查接口：postgres 必需，redis 失败只降级
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"postgres": probe(ctx, h.pg, "error"),
		"redis":    {Status: "disabled"},
	}
	if h.redis != nil {
		checks["redis"] = probe(ctx, h.redis, "degraded")
	}

	if checks["postgres"].Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, readinessResponse{Status: "ok", Checks: checks})
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func probe(ctx context.Context, hc HealthChecker, failStatus string) *readinessCheck {
	if hc == nil {
		return &readinessCheck{Status: "missing", Error: "client not configured"}
	}
	start := time.Now()
	err := hc.HealthCheck(ctx)
	check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = failStatus
		check.Error = err.Error()
	}
	return check
}
