package api

import (
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// RegisterRoutes mounts the record API. When verify is nil the record
// endpoints are open.
func RegisterRoutes(r *gin.Engine, h *handlers.RecordsHandler, verify middleware.TokenVerifier, log *zap.Logger) {
	r.Use(corsMiddleware())

	api := r.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	recordsGroup := api.Group("/records")
	if verify != nil {
		recordsGroup.Use(middleware.RequireAuth(verify, log))
	}
	{
		recordsGroup.GET("", h.List)            // list records in store order
		recordsGroup.GET("/history", h.History) // ?key=
		recordsGroup.DELETE("", h.Delete)       // ?key= or ?index=1,3
		recordsGroup.POST("/sweep", h.Sweep)    // remove expired records
	}
}
