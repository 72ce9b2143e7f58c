package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/shopaudit/backend/config"
	"github.com/shopaudit/backend/enhancer"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/middleware"
	"github.com/shopaudit/backend/pagespeed"
	"github.com/shopaudit/backend/pipeline"
	"github.com/shopaudit/backend/retry"
	"github.com/shopaudit/backend/scraper"
	"github.com/shopaudit/backend/stats"
)

func loadEnv() {
	// .env.development wins for local work, then plain .env.
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	logger := logging.New(os.Stdout, cfg.Logging.Level)

	usage, err := stats.NewStorage(cfg.Stats.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize stats storage:", err)
	}
	defer usage.Shutdown()

	policy := retry.Policy{
		MaxAttempts: cfg.Prediction.MaxAttempts,
		Base:        time.Second,
		Cap:         30 * time.Second,
	}

	contentClient, err := enhancer.NewClient(
		cfg.Prediction.APIKey,
		cfg.Prediction.BaseURL,
		cfg.Prediction.Model,
		logger,
		enhancer.WithRetryPolicy(policy),
		enhancer.WithPollInterval(cfg.Prediction.PollInterval, cfg.Prediction.PollTimeout),
	)
	if err != nil {
		log.Fatal("Failed to initialize content client:", err)
	}

	service := pipeline.New(
		scraper.New(logger, scraper.WithTimeout(cfg.Scraper.Timeout)),
		contentClient,
		pagespeed.New(cfg.PageSpeed.APIKey, logger),
		usage,
		logger,
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r := gin.New()
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(rateLimiter.RateLimit())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", analyzeHandler(service, logger))

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, usage.GetCurrentStats())
		})
	}

	logger.Info("server starting", logging.Fields{"port": cfg.Server.Port})
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func analyzeHandler(service *pipeline.Service, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			URL string `json:"url" binding:"required,url"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid URL provided",
			})
			return
		}

		result, err := service.Analyze(c.Request.Context(), request.URL)
		if err != nil {
			// Operators get the raw error; the caller gets the
			// sanitized classification only.
			logger.Error("analysis failed", logging.Fields{
				"url":   request.URL,
				"error": err.Error(),
			})
			classified := pipeline.SanitizeError(err)
			c.JSON(http.StatusBadGateway, gin.H{
				"code":  classified.Code,
				"error": classified.UserMessage,
			})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
