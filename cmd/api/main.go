package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/daily-diet-api/docs" // Swagger docs
	"github.com/redmonkez12/daily-diet-api/internal/config"
	"github.com/redmonkez12/daily-diet-api/internal/database"
	httpServer "github.com/redmonkez12/daily-diet-api/internal/http"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/meal"
	"github.com/redmonkez12/daily-diet-api/internal/ratelimit"
	"github.com/redmonkez12/daily-diet-api/internal/user"
)

// @title           Daily Diet API
// @version         1.0
// @description     Track meals per user and whether each one was within the diet.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
	)

	if cfg.Database.AutoMigrate {
		version, err := database.MigrateUp(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database schema up to date", "version", version)
	}

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize rate limiter
	limiter, closeLimiter, err := initLimiter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	mealRepo := meal.NewRepository(db)

	// Initialize services
	userService := user.NewService(userRepo, logger)
	mealService := meal.NewService(mealRepo, userService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Users: user.NewHandler(userService),
		Meals: meal.NewHandler(mealService),
	}, limiter, db, logger)

	// Initialize HTTP server
	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initLimiter returns the Redis backed limiter, or an in-process one when
// Redis is disabled
func initLimiter(ctx context.Context, cfg *config.Config, logger *logging.Logger) (ratelimit.Limiter, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), func() {}, nil
	}

	client, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err.Error())
		}
	}
	return ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), closeFn, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
