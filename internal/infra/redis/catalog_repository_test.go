package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
	"emotion-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CatalogLoader: memory.NewBuiltinLoader()}
	repo := NewCatalogRepository(client, loader, time.Minute)

	first, err := repo.GetCatalog(context.Background(), catalog.IDCompound)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("catalog:" + catalog.IDCompound) {
		t.Fatalf("expected catalog key to be set")
	}
	if ttl := mr.TTL("catalog:" + catalog.IDCompound); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl with at most 10%% jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.GetCatalog(context.Background(), catalog.IDCompound)
	if err != nil {
		t.Fatalf("get cached catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached catalog differs from loaded one")
	}

	if err := repo.Invalidate(context.Background(), catalog.IDCompound); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetCatalog(context.Background(), catalog.IDCompound)
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryIgnoresCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("catalog:"+catalog.IDPositional, "{not json")
	loader := &countingLoader{CatalogLoader: memory.NewBuiltinLoader()}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	cat, err := repo.GetCatalog(context.Background(), catalog.IDPositional)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if cat.ID != catalog.IDPositional || loader.calls != 1 {
		t.Fatalf("expected fallback to loader, got id=%s calls=%d", cat.ID, loader.calls)
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, catalogID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
