// Package api exposes stored news, comments and accounts over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Zenframe/internal/auth"
	"Zenframe/internal/metrics"
	"Zenframe/internal/ports"
	"Zenframe/internal/usecase"
)

// ReportSource exposes the summary of the latest ingestion cycle.
type ReportSource interface {
	LastReport() (usecase.CycleReport, bool)
}

// Deps holds everything the router needs.
type Deps struct {
	Store          ports.Store
	Reports        ReportSource
	Tokens         *auth.JWTManager
	Metrics        *metrics.HTTP
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	router.Use(requestLogger(deps.Logger))
	router.Use(observe(deps.Metrics))

	authHandler := NewAuthHandler(deps.Store, deps.Tokens, deps.Logger)
	newsHandler := NewNewsHandler(deps.Store, deps.Logger)

	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)

	news := router.Group("/api/news")
	news.GET("", newsHandler.List)
	news.GET("/:id", newsHandler.Get)
	news.POST("/:id/add_comment", requireAuth(deps.Tokens), newsHandler.AddComment)

	router.GET("/healthz", healthHandler(deps.Reports))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
