package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/config"
	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/handlers"
	"github.com/dan404cipher/alumini-accel-sub000/internal/metrics"
	"github.com/dan404cipher/alumini-accel-sub000/internal/middleware"
	"github.com/dan404cipher/alumini-accel-sub000/internal/migrations"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/internal/routes"
	"github.com/dan404cipher/alumini-accel-sub000/internal/services"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting AlumniAccel Reward Ledger...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect Database & Redis
	database.Connect()
	database.InitRedis()

	// 2. Migrations: tables first, then constraints, then versioned indexes
	logger.Info().Msg("Running database migrations (stage 1: tables)...")
	database.DB.Config.DisableForeignKeyConstraintWhenMigrating = true

	tableModels := []interface{}{
		&models.User{},
		&models.Reward{},
		&models.RewardTask{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Activity{},
		&models.ActivityHistory{},
		&models.Notification{},
		&models.Donation{},
		&models.EventAttendance{},
		&models.Mentorship{},
		&models.JobPost{},
		&models.Referral{},
		&models.EngagementEvent{},
	}

	for _, m := range tableModels {
		if err := database.DB.AutoMigrate(m); err != nil {
			logger.Fatal().Err(err).Msgf("Failed to migrate table for %T", m)
		}
	}

	logger.Info().Msg("Running database migrations (stage 2: constraints)...")
	database.DB.Config.DisableForeignKeyConstraintWhenMigrating = false
	if err := database.DB.AutoMigrate(tableModels...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to add database constraints")
	}

	if err := migrations.NewMigrator(database.DB).Run(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run versioned migrations")
	}
	logger.Info().Msg("Database migrations complete")

	// 3. Wire services: production metric sources over the collaborator tables
	handlers.InitServices(database.DB, metrics.NewRegistry(database.DB))
	services.SetLeaderboardCacheTTL(time.Duration(config.AppConfig.LeaderboardCacheTTL) * time.Second)
	services.SetVerificationPageSize(config.AppConfig.VerificationPageSize)

	// 4. Expiry sweep
	sweeper := services.NewSweeper(database.DB)
	sweeper.StartScheduler(time.Duration(config.AppConfig.ExpirySweepInterval) * time.Minute)

	// 5. Router
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")
	{
		routes.RegisterLedgerRoutes(api)
		routes.RegisterAdminRoutes(api)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 6. Serve with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	go func() {
		logger.Info().Str("port", config.AppConfig.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
	logger.Info().Msg("Server stopped")
}
