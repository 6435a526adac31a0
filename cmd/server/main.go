package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/vouchportal/vouch-api/internal/cache"
	"github.com/vouchportal/vouch-api/internal/config"
	"github.com/vouchportal/vouch-api/internal/database"
	"github.com/vouchportal/vouch-api/internal/handlers"
	"github.com/vouchportal/vouch-api/internal/middleware"
	"github.com/vouchportal/vouch-api/internal/repository"
	"github.com/vouchportal/vouch-api/internal/services"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	logger := middleware.NewLogger()
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database; the store is required to serve at all
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Apply versioned migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is best-effort: caching and rate limits fail open without it
	redisCache := cache.New(cfg.RedisURL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	vouchRepo := repository.NewVouchRepository(db)
	eventRepo := repository.NewEventRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// Services
	ledger := services.NewLedgerService(vouchRepo, userRepo, eventRepo)
	directory := services.NewDirectoryService(userRepo, eventRepo, ledger)
	analytics := services.NewAnalyticsService(analyticsRepo, userRepo, eventRepo, redisCache)
	invites := services.NewInviteService(inviteRepo, eventRepo)
	configs := services.NewConfigService(configRepo)

	// Handlers
	vouchHandler := handlers.NewVouchHandler(ledger)
	userHandler := handlers.NewUserHandler(directory)
	profileHandler := handlers.NewProfileHandler(directory, ledger)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics)
	inviteHandler := handlers.NewInviteHandler(invites)
	adminHandler := handlers.NewAdminHandler(configs, directory)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.StructuredLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "vouch-portal",
		})
	})

	rdb := redisCache.Client()

	// API routes
	api := r.Group("/api")
	{
		api.POST("/users", userHandler.RegisterUser)
		api.GET("/users", userHandler.ListUsers)
		api.GET("/search", userHandler.SearchUsers)

		api.GET("/profile/:id", profileHandler.GetProfile)
		api.POST("/profile/update", profileHandler.UpdateProfile)

		api.POST("/vouch", middleware.RateLimit(rdb, 30, time.Minute, "vouch"), vouchHandler.CreateVouch)
		api.PATCH("/vouch/:id", vouchHandler.UpdateVouch)

		api.POST("/invite", middleware.RateLimit(rdb, 10, time.Minute, "invite"), inviteHandler.SendInvite)

		api.GET("/analytics", analyticsHandler.GetAnalytics)
		api.GET("/activity", analyticsHandler.GetActivity)
		api.GET("/leaderboard", analyticsHandler.GetLeaderboard)
		api.GET("/leaderboards/:board_type", analyticsHandler.GetLeaderboardByType)
		api.GET("/referrals/:id", analyticsHandler.GetReferralStats)
		api.GET("/viral/summary", analyticsHandler.GetViralSummary)
		api.POST("/share", analyticsHandler.LogShare)

		// Admin routes (guarded by a single configured admin ID)
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(cfg.AdminID))
		{
			admin.GET("/config", adminHandler.GetConfig)
			admin.POST("/config", adminHandler.UpdateConfig)
			admin.POST("/rank", adminHandler.CorrectRank)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}
