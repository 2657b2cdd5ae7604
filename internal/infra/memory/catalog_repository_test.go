package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewBuiltinLoader()}
	repo := NewCatalogRepository(loader, time.Minute)

	cat, err := repo.GetCatalog(context.Background(), catalog.IDCompound)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if cat.ID != catalog.IDCompound {
		t.Fatalf("unexpected catalog %s", cat.ID)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), catalog.IDCompound); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewBuiltinLoader()}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background(), catalog.IDPositional)
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background(), catalog.IDPositional)
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryUnknown(t *testing.T) {
	repo := NewCatalogRepository(NewBuiltinLoader(), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "missing"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, catalogID)
}
