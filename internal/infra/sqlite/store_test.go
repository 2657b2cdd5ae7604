package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "catalogs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedAndLoad(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	ids, err := s.SeedBuiltins(ctx)
	if err != nil {
		t.Fatalf("SeedBuiltins: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 seeded catalogs, got %v", ids)
	}

	got, err := s.LoadCatalog(ctx, catalog.IDCompound)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if !reflect.DeepEqual(got, catalog.Compound()) {
		t.Fatalf("loaded catalog differs from built-in")
	}

	listed, err := s.ListCatalogs(ctx)
	if err != nil {
		t.Fatalf("ListCatalogs: %v", err)
	}
	want := []string{catalog.IDPositional, catalog.IDCompound, catalog.IDPositionalV3}
	if !reflect.DeepEqual(listed, want) {
		t.Fatalf("expected %v, got %v", want, listed)
	}
}

func TestSaveUpserts(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	cat := catalog.PositionalV3()
	if err := s.Save(ctx, cat); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cat.GenericHints = []string{"Look at the eyes first."}
	if err := s.Save(ctx, cat); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := s.LoadCatalog(ctx, cat.ID)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(got.GenericHints) != 1 || got.GenericHints[0] != "Look at the eyes first." {
		t.Fatalf("expected updated hints, got %v", got.GenericHints)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := tempStore(t)
	cat := catalog.Compound()
	cat.Tiers = nil
	if err := s.Save(context.Background(), cat); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected invalid catalog, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := tempStore(t)
	if _, err := s.LoadCatalog(context.Background(), "nope"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
