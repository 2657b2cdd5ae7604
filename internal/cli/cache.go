package cli

import (
	"context"
	"log"

	"emotion-quiz-service/internal/config"
	rediscache "emotion-quiz-service/internal/infra/redis"
	"github.com/redis/go-redis/v9"
)

// invalidateCatalogCache drops cached copies of ids so running servers reload them
// from the store. It is a no-op without Redis; in-memory caches expire on their own TTL.
func invalidateCatalogCache(ctx context.Context, cfg config.Config, ids []string) error {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	repo := rediscache.NewCatalogRepository(client, nil, 0)
	for _, id := range ids {
		if err := repo.Invalidate(ctx, id); err != nil {
			return err
		}
	}
	log.Printf("invalidated cached catalogs: %v", ids)
	return nil
}
