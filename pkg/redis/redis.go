package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the requested key is not cached.
var ErrCacheMiss = errors.New("cache miss")

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, nil when Redis is not configured
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// CacheProduct stores a serialized product under its id
func CacheProduct(ctx context.Context, c *redis.Client, productID string, payload []byte, ttl time.Duration) error {
	if err := c.Set(ctx, productKey(productID), payload, ttl).Err(); err != nil {
		logger.Error("Failed to cache product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

// CachedProduct fetches a serialized product by id, ErrCacheMiss when absent
func CachedProduct(ctx context.Context, c *redis.Client, productID string) ([]byte, error) {
	payload, err := c.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		logger.Error("Failed to read product cache", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return payload, nil
}
