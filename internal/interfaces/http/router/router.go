// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novel-studio-api/internal/config"
	"novel-studio-api/internal/interfaces/http/handler"
	"novel-studio-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health  *handler.HealthHandler
	AI      *handler.AIHandler
	Genre   *handler.GenreHandler
	Novel   *handler.NovelHandler
	Chapter *handler.ChapterHandler
	Cover   *handler.CoverHandler
}

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// New 创建路由器并注册中间件与路由
func New(cfg *config.Config, h Handlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
	}
	r.setupMiddleware()
	r.setupRoutes(h)
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

func (r *Router) setupRoutes(h Handlers) {
	if h.Health != nil {
		r.engine.GET("/health", h.Health.Health)
		r.engine.GET("/ready", h.Health.Ready)
		r.engine.GET("/live", h.Health.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	RegisterV1Routes(r.engine.Group("/v1"), h)
}
