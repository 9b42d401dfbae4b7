// Package bootstrap wires runtime dependencies shared by the server and
// auxiliary commands.
package bootstrap

import (
	"fmt"

	"threadline/internal/cache"
	"threadline/internal/config"
	"threadline/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client may be
// nil when the cache is unreachable; everything degrades gracefully.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	return db, r, nil
}
