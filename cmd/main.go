package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emr-auth/config"
	"emr-auth/controller"
	"emr-auth/handler"
	"emr-auth/migrations"
	"emr-auth/notifier"
	"emr-auth/pkg/logger"
	"emr-auth/pkg/scheduler"
	"emr-auth/repository"
	"emr-auth/service"
	"emr-auth/validator"

	"github.com/redis/go-redis/v9"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Infow("Starting EMR Authentication Service",
		"version", "1.0.0",
		"port", cfg.HTTPServer.Port,
		"log_level", cfg.Logger.Level,
		"otp_ttl", cfg.OTP.ExpirationTime,
		"expose_codes", cfg.OTP.ExposeCodes,
	)

	// Connect to database
	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	log.Infow("Database connected",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	// Run migrations
	if err := migrations.RunMigrations(db.DB, "./migrations"); err != nil {
		log.Fatalw("Failed to run database migrations", "error", err)
	}

	// Connect to Redis for rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalw("Failed to connect to Redis", "error", err)
	}

	log.Infow("Redis connected", "host", cfg.Redis.Host, "port", cfg.Redis.Port)

	// Initialize validator
	v := validator.New()

	// Initialize repositories
	otpRepo := repository.NewOTPRepository(db)
	principalRepo := repository.NewPrincipalRepository(db)
	rateLimitRepo := repository.NewRedisRateLimitRepository(redisClient, cfg, log)

	// Initialize notification dispatcher with primary/fallback channels.
	// Unconfigured channels are skipped; with none, sends are log-only.
	var channels []notifier.Channel
	if ch := notifier.NewWhatsAppChannel(cfg.Notifier); ch != nil {
		channels = append(channels, ch)
	}
	if ch := notifier.NewSMSChannel(cfg.Notifier); ch != nil {
		channels = append(channels, ch)
	}
	dispatcher := notifier.NewDispatcher(channels, cfg.Notifier.QueueSize, cfg.Notifier.SendTimeout, log)
	defer dispatcher.Close()

	// Initialize services
	otpService := service.NewOTPService(otpRepo, rateLimitRepo, dispatcher, cfg, log)
	jwtService := service.NewJWTService(cfg, log)
	authService := service.NewAuthService(otpService, jwtService, principalRepo, cfg, log)

	// Initialize controllers
	otpController := controller.NewOTPController(authService, v, log)
	authController := controller.NewAuthController(authService, v, log)
	healthController := controller.NewHealthController()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Register routes
	handler.RegisterRoutes(e, otpController, authController, healthController, jwtService, log)

	// Background jobs: challenge reaper and rate limit cleanup
	jobs := scheduler.New(log)
	jobs.Register(scheduler.Job{
		Name:     "otp-reaper",
		Interval: cfg.Reaper.SweepInterval,
		Run: func(ctx context.Context) error {
			_, err := otpService.CleanupExpired(ctx)
			return err
		},
	})
	jobs.Register(scheduler.Job{
		Name:     "rate-limit-cleanup",
		Interval: cfg.Reaper.RateLimitCleanupInterval,
		Run: func(ctx context.Context) error {
			return rateLimitRepo.CleanupRateLimits(ctx)
		},
	})
	jobs.Start()
	defer jobs.Stop()

	// Start server in a goroutine
	serverAddr := fmt.Sprintf(":%d", cfg.HTTPServer.Port)
	go func() {
		log.Infow("Starting HTTP server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Infow("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Application.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Failed to shutdown server gracefully", "error", err)
		os.Exit(1)
	}

	log.Infow("Server shutdown completed")
}

func connectDB(cfg *config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var db *sqlx.DB
	var err error

	// Retry connection up to 30 times with 1 second delay
	for i := 0; i < 30; i++ {
		db, err = sqlx.Connect("postgres", connStr)
		if err == nil {
			if err = db.Ping(); err == nil {
				break
			}
			db.Close()
		}
		time.Sleep(1 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after 30 attempts: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
