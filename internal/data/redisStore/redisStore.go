package redisStore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	once      sync.Once
)

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared store for the given logical DB, or nil when
// Redis cannot be reached so callers can fall back to memory.
func GetRedisStore(ctx context.Context, settings config.RedisSettings, dbType int) *Store {
	mu.RLock()
	instance, exists := instances[dbType]
	mu.RUnlock()

	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[dbType]; exists {
		return instance
	}
	return createNewStore(ctx, settings, dbType)
}

func storeLogger(dbType int) *logger_i.Logger {
	return logger_i.NewLogger("redis_store").With("db", strconv.Itoa(dbType))
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	log := logger_i.NewLogger("redis_store")
	log.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for dbType, store := range instances {
		if err := store.client.Close(); err != nil {
			log.Error("Error closing redis client", "error", err)
		}
		delete(instances, dbType)
	}
	log.Info("Redis Store Closed successfully")
}

func createNewStore(ctx context.Context, settings config.RedisSettings, dbType int) *Store {
	log := storeLogger(dbType)
	newClient := redis.NewClient(&redis.Options{
		Addr:                  settings.Addr,
		Password:              settings.Password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis is offline", "addr", settings.Addr, "error", err)
		_ = newClient.Close()
		return nil
	}

	log.Info("Redis store init successfully", "addr", settings.Addr)

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore
}

// NewTestStore wraps an existing client, e.g. one pointed at miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}
