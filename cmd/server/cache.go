package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/redact"
)

// openCache connects to the configured cache backend.
func openCache(ctx context.Context, env config.Environment, log *slog.Logger) (*cache.Cache, error) {
	if env.CacheBackend == "memory" {
		log.Warn("using in-process cache; state is lost on restart")
		return cache.New(cache.NewMemoryStore(), log), nil
	}

	client, err := cache.DialRedis(ctx, cache.RedisOptions{
		Addr:     env.RedisAddr(),
		Password: env.RedisPassword,
		DB:       env.RedisDB,
	})
	if err != nil {
		log.Error("failed to connect to redis", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	log.Info("cache connection established",
		"addr", env.RedisAddr(),
		"db", env.RedisDB,
		"key_prefix", env.RedisKeyPrefix)
	return cache.New(cache.NewRedisStore(client, env.RedisKeyPrefix), log), nil
}
