// Package cache provides an optional Redis-backed read cache for hot
// recipe listings. When no Redis URL is configured every operation is a
// no-op and reads report a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// KeyLatestRecipes holds the newest-recipes listing served on the home
// page. Invalidated on every recipe write.
const KeyLatestRecipes = "recipes:latest"

var (
	redisClient *redis.Client
	enabled     bool
)

// Initialize sets up the Redis connection if redisURL is provided.
func Initialize(redisURL string) {
	if redisURL == "" {
		logrus.Info("Redis URL not provided, caching disabled")
		enabled = false
		return
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.WithError(err).Warn("Failed to parse Redis URL, caching disabled")
		enabled = false
		return
	}

	redisClient = redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to connect to Redis, caching disabled")
		enabled = false
		return
	}

	enabled = true
	logrus.Info("Redis cache initialized")
}

func Close() {
	if redisClient != nil {
		redisClient.Close()
	}
}

// Set stores a value with an expiration.
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value into dest. Returns redis.Nil on a miss.
func Get(ctx context.Context, key string, dest interface{}) error {
	if !enabled {
		return redis.Nil
	}

	data, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key.
func Delete(ctx context.Context, key string) error {
	if !enabled {
		return nil
	}
	return redisClient.Del(ctx, key).Err()
}
