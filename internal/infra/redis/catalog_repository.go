package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"emotion-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches catalog content from a backing store (built-ins, Postgres, SQLite).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches catalogs in Redis and falls back to a loader on cache miss.
// Catalogs are stored as: SET catalog:{catalogID} <json> EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	if cat, ok := r.cached(ctx, catalogID); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cat, ok := r.cached(ctx, catalogID); ok {
			return cat, nil
		}

		cat, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}

		data, err := json.Marshal(cat)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("marshal catalog: %w", err)
		}
		// best-effort; a failed write only costs another load
		_ = r.client.Set(ctx, r.key(catalogID), data, r.ttlWithJitter()).Err()
		return cat, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate drops the cached copy so the next read goes to the loader.
func (r *CatalogRepository) Invalidate(ctx context.Context, catalogID string) error {
	return r.client.Del(ctx, r.key(catalogID)).Err()
}

func (r *CatalogRepository) cached(ctx context.Context, catalogID string) (domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, r.key(catalogID)).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var cat domain.Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return domain.Catalog{}, false
	}
	return cat, true
}

func (r *CatalogRepository) key(catalogID string) string {
	return "catalog:" + catalogID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
