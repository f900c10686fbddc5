package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/shared/server/middleware"
	"intake-backend/internal/shared/server/respond"
)

// WebhookRegistrar attaches a webhook route to the engine.
type WebhookRegistrar interface {
	RegisterRoutes(r *gin.Engine, path string)
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(webhook WebhookRegistrar, webhookPath string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	webhook.RegisterRoutes(r, webhookPath)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
