package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stashbox/internal/auth/config"
	"stashbox/internal/di"
	"stashbox/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServerConfig holds server and store configuration.
type ServerConfig struct {
	Host         string `env:"SERVER_HOST" envDefault:"localhost"`
	Port         string `env:"SERVER_PORT" envDefault:"3000"`
	MongoURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"stashbox"`

	// RedisAddr empty disables the audit stream.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(serverCfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	appLogger.Info("MongoDB connection established successfully")

	var redisClient *redis.Client
	if serverCfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     serverCfg.RedisAddr,
			Password: serverCfg.RedisPassword,
			DB:       serverCfg.RedisDB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				appLogger.Errorf("Failed to close Redis client: %v", err)
			}
		}()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}
		appLogger.Info("Redis connection established successfully")
	} else {
		appLogger.Warn("REDIS_ADDR not set, audit events disabled")
	}

	authConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load auth configuration: %v", err)
	}

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	container.InitializeInfrastructure(mongoClient.Database(serverCfg.DatabaseName), redisClient)
	if err := container.InitializeAuth(authConfig); err != nil {
		log.Fatalf("Failed to initialize auth module: %v", err)
	}
	if err := container.InitializePlaces(); err != nil {
		log.Fatalf("Failed to initialize places module: %v", err)
	}
	if err := container.InitializeItems(); err != nil {
		log.Fatalf("Failed to initialize items module: %v", err)
	}
	appLogger.Info("All modules initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Stashbox API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.Errorf("HTTP Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"type":    "INTERNAL_ERROR",
					"message": "internal server error",
				},
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("CORS_ORIGINS"),
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + authConfig.CSRFHeaderName,
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
		})
	})

	authModule := container.GetAuthModule()
	middleware := authModule.GetMiddleware()
	app.Use(middleware.RequestID())

	authGroup := app.Group("/api/auth", middleware.RateLimiter())
	authModule.RegisterRoutes(authGroup)

	container.GetPlacesModule().RegisterRoutes(app.Group("/api/places"), middleware)
	container.GetItemsModule().RegisterRoutes(app.Group("/api/items"), middleware)
	appLogger.Info("Routes registered")

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
