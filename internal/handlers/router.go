package handlers

import (
	"net/http"
	"time"

	"practice-service/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
}

type Handlers struct {
	Auth     *AuthHandler
	Practice *PracticeHandler
	Progress *ProgressHandler
	Feedback *FeedbackHandler
}

func SetupRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.Auth(cfg.Tokens), h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.Tokens))

	practice := protected.Group("/practice")
	{
		practice.POST("/generate", h.Practice.Generate)
		practice.POST("/submit", h.Practice.Submit)
		practice.POST("/enter-adjustment-mode", h.Practice.EnterAdjustmentMode)
		practice.GET("/history/:userId", h.Practice.History)
		practice.GET("/history/:userId/export", h.Practice.ExportHistory)
	}

	progress := protected.Group("/progress")
	{
		progress.GET("/:userId", h.Progress.Get)
		progress.PUT("/:userId/preferences", h.Progress.UpdatePreferences)
	}

	protected.POST("/feedback", h.Feedback.Create)

	return r
}
