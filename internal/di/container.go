package di

import (
	"context"
	"fmt"
	"sync"

	"stashbox/internal/audit"
	"stashbox/internal/auth"
	"stashbox/internal/auth/config"
	"stashbox/internal/items"
	"stashbox/internal/places"
	"stashbox/internal/shared/database"
	"stashbox/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires the modules together with proper lifecycle management.
// Initialization order matters: auth first, then places, then items; the
// cross-module cascades (account purge, place detach) are registered once
// every module exists.
type Container struct {
	mu sync.RWMutex

	// Module instances
	AuthModule   *auth.AuthModule
	PlacesModule *places.PlacesModule
	ItemsModule  *items.ItemsModule

	// Shared infrastructure
	MongoDB  *mongo.Database
	Redis    *redis.Client
	Counters *database.Counters
	Tx       database.TxRunner
	Auditor  audit.Recorder

	// Configuration
	AuthConfig *config.Config

	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container.
func NewContainer(log logger.Logger) *Container {
	return &Container{
		Logger: log,
	}
}

// InitializeInfrastructure stores the shared infrastructure every module
// builds on.
func (c *Container) InitializeInfrastructure(mongoDB *mongo.Database, redisClient *redis.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.Redis = redisClient
	c.Counters = database.NewCounters(mongoDB)
	c.Tx = database.NewMongoTxRunner(mongoDB.Client(), c.Logger)

	if redisClient != nil {
		c.Auditor = audit.NewRedisRecorder(redisClient, c.Logger)
	} else {
		c.Auditor = audit.NopRecorder{}
	}
}

// InitializeAuth initializes the authentication module.
func (c *Container) InitializeAuth(authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return fmt.Errorf("infrastructure must be initialized before the auth module")
	}
	c.AuthConfig = authConfig

	authModule, err := auth.NewAuthModule(c.MongoDB, c.Counters, c.Tx, c.Auditor, authConfig)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// InitializePlaces initializes the place-tree module.
func (c *Container) InitializePlaces() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before the places module")
	}

	placesModule, err := places.NewPlacesModule(c.MongoDB, c.Counters, c.Tx, c.Auditor)
	if err != nil {
		return fmt.Errorf("failed to create places module: %w", err)
	}

	c.PlacesModule = placesModule
	c.AuthModule.AddPurgers(placesModule.Purger())
	return nil
}

// InitializeItems initializes the items module and registers its cascades.
func (c *Container) InitializeItems() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.PlacesModule == nil {
		return fmt.Errorf("places module must be initialized before the items module")
	}

	itemsModule, err := items.NewItemsModule(c.MongoDB, c.Counters, c.Tx, c.PlacesModule.GetUsecase())
	if err != nil {
		return fmt.Errorf("failed to create items module: %w", err)
	}

	c.ItemsModule = itemsModule
	c.AuthModule.AddPurgers(itemsModule.Purger())
	c.PlacesModule.AddUnlinkers(itemsModule.Unlinker())
	return nil
}

// GetAuthModule returns the auth module instance.
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetPlacesModule returns the places module instance.
func (c *Container) GetPlacesModule() *places.PlacesModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PlacesModule
}

// GetItemsModule returns the items module instance.
func (c *Container) GetItemsModule() *items.ItemsModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ItemsModule
}

// HealthCheck pings the backing stores.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close releases the container's resources. Store connections are owned by
// the caller that opened them and are closed there.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ItemsModule = nil
	c.PlacesModule = nil
	c.AuthModule = nil
	return nil
}
