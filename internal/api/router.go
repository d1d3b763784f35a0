package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/api/handler"
	"github.com/qs3c/sheetsync_server/internal/api/middleware"
	"github.com/qs3c/sheetsync_server/internal/pkg/metrics"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	apiKeyHandler       *handler.APIKeyHandler
	connectTokenHandler *handler.ConnectTokenHandler
	addonHandler        *handler.AddonHandler
	websocketHandler    *handler.WebSocketHandler
	healthHandler       *handler.HealthHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	apiKeyHandler *handler.APIKeyHandler,
	connectTokenHandler *handler.ConnectTokenHandler,
	addonHandler *handler.AddonHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		apiKeyHandler:       apiKeyHandler,
		connectTokenHandler: connectTokenHandler,
		addonHandler:        addonHandler,
		websocketHandler:    websocketHandler,
		healthHandler:       healthHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.GET("/google", r.authHandler.GoogleLogin)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
		}

		// 插件接口（连接 token 认证）
		addon := api.Group("/addon")
		{
			addon.POST("/sync", r.addonHandler.Sync)
			addon.GET("/sync", r.addonHandler.Fetch)
		}

		// 需要认证的接口
		user := api.Group("/user")
		user.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user.GET("/profile", r.userHandler.GetProfile)
			user.GET("/quota", r.userHandler.GetQuota)
			user.GET("/usage", r.userHandler.GetUsage)

			user.GET("/api-keys", r.apiKeyHandler.List)
			user.POST("/api-keys", r.apiKeyHandler.Save)
			user.DELETE("/api-keys", r.apiKeyHandler.Delete)

			user.GET("/connect-token", r.connectTokenHandler.Get)
			user.POST("/connect-token", r.connectTokenHandler.Regenerate)
		}
	}

	return engine
}
