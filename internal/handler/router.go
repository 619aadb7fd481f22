package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/config"
	"channelpass/gatekeeper/internal/handler/middleware"
	jwtpkg "channelpass/gatekeeper/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS))
	}

	// Liveness only: the bot keeps polling regardless of what this reports.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Admin routes (JWT + admin check)
	if adminHandler != nil {
		admin := r.Group("/api/v1/admin")
		admin.Use(middleware.JWTAuth(jwtManager))
		admin.Use(middleware.AdminAuth(cfg.Telegram.AdminID))
		{
			admin.POST("/codes", adminHandler.CreateCode)
			admin.GET("/codes", adminHandler.ListCodes)

			admin.GET("/subscriptions", adminHandler.ListSubscriptions)
			admin.POST("/subscriptions/:id/ban", adminHandler.BanSubscription)

			admin.POST("/sweep", adminHandler.RunSweep)
			admin.GET("/audit", adminHandler.ListAudit)
		}
	}

	return r
}
