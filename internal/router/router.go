package router

import (
	"net/http"

	"gametracker/internal/config"
	"gametracker/internal/handlers"
	"gametracker/internal/logger"
	"gametracker/internal/middleware"
	"gametracker/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures and returns the Gin router
func Setup(db *gorm.DB, cfg *config.Config, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))
	router.Use(corsMiddleware(cfg.CORS))

	metrics := middleware.NewMetrics()
	router.Use(metrics.Middleware())

	var issuer *middleware.TokenIssuer
	if cfg.Auth.Enabled {
		issuer = middleware.NewTokenIssuer(cfg.Auth)
	}
	owner := middleware.RequireOwner(issuer)

	// Initialize handlers
	validate := models.NewValidator()
	gameHandler := handlers.NewGameHandler(db, validate, log)
	reviewHandler := handlers.NewReviewHandler(db, validate, log)
	authHandler := handlers.NewAuthHandler(cfg.Auth, issuer, log)
	statsHandler := handlers.NewStatsHandler(db, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := router.Group("/api")
	{
		api.POST("/auth/token", authHandler.IssueToken)
		api.GET("/stats", statsHandler.GetStats)

		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListGames)
			games.GET("/search", gameHandler.SearchGames)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("", owner, gameHandler.CreateGame)
			games.PUT("/:id", owner, gameHandler.UpdateGame)
			games.DELETE("/:id", owner, gameHandler.DeleteGame)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/game/:game_id", reviewHandler.GetReviewsByGame)
			reviews.POST("", owner, reviewHandler.CreateReview)
			reviews.PUT("/:id", owner, reviewHandler.UpdateReview)
			reviews.DELETE("/:id", owner, reviewHandler.DeleteReview)
		}
	}

	return router
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 {
		return cors.Default()
	}

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return cors.New(corsCfg)
}
