// Package sqlite keeps catalogs in a local SQLite file for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalogs (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store persists catalogs as JSON documents.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at path and creates the schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates cat and upserts it.
func (s *Store) Save(ctx context.Context, cat domain.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalogs (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		cat.ID, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save catalog %s: %w", cat.ID, err)
	}
	return nil
}

// SeedBuiltins writes every built-in catalog and returns their ids.
func (s *Store) SeedBuiltins(ctx context.Context) ([]string, error) {
	var ids []string
	for _, id := range []string{catalog.IDPositional, catalog.IDPositionalV3, catalog.IDCompound} {
		if err := s.Save(ctx, catalog.Builtins()[id]); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM catalogs WHERE id = ?`, catalogID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Catalog{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, catalogID)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var cat domain.Catalog
	if err := json.Unmarshal([]byte(raw), &cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return cat, nil
}

// ListCatalogs returns the stored ids in order.
func (s *Store) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM catalogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan catalog id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
