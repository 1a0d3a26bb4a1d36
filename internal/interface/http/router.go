package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/dreamvision/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)

		protected := api.Group("")
		protected.Use(authMiddleware(handler.authSvc))

		protected.GET("/auth/profile", handler.Profile)
		protected.PUT("/auth/profile", handler.UpdateProfile)

		dreams := protected.Group("/dreams")
		dreams.POST("", handler.CreateDream)
		dreams.GET("", handler.ListDreams)
		dreams.GET("/:id", handler.GetDream)
		dreams.PUT("/:id", handler.UpdateDream)
		dreams.DELETE("/:id", handler.DeleteDream)
		dreams.POST("/:id/interpretation", handler.Interpret)
		dreams.GET("/:id/interpretation", handler.GetInterpretation)
		dreams.POST("/:id/visualization", handler.Visualize)
		dreams.GET("/:id/visualization", handler.GetVisualization)

		users := protected.Group("/users")
		users.GET("/entitlement", handler.Entitlement)
		users.POST("/upgrade", handler.Upgrade)
		users.GET("/stats", handler.Stats)
		users.GET("/export", handler.Export)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"user_id", requestUserID(c),
			"latency_ms", latency.Milliseconds(),
		)
	}
}
