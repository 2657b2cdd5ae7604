package migrations

import (
	"context"
	"time"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type catalogRow struct {
	bun.BaseModel `bun:"table:catalogs"`

	ID        string         `bun:"id,pk"`
	Data      domain.Catalog `bun:"data,type:jsonb"`
	UpdatedAt time.Time      `bun:"updated_at"`
}

// SeedBuiltins upserts every built-in catalog.
func SeedBuiltins(ctx context.Context, db bun.IDB) error {
	var rows []catalogRow
	for _, cat := range catalog.Builtins() {
		rows = append(rows, catalogRow{ID: cat.ID, Data: cat, UpdatedAt: time.Now().UTC()})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return SeedBuiltins(ctx, db)
		},
		func(ctx context.Context, db *bun.DB) error {
			ids := make([]string, 0, len(catalog.Builtins()))
			for _, cat := range catalog.Builtins() {
				ids = append(ids, cat.ID)
			}
			_, err := db.NewDelete().
				Model((*catalogRow)(nil)).
				Where("id IN (?)", bun.In(ids)).
				Exec(ctx)
			return err
		},
	)
}
