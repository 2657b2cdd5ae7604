package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"emotion-quiz-service/internal/catalog"
	"emotion-quiz-service/internal/config"
	pgmigrations "emotion-quiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd creates the catalogs table and seeds the built-in catalogs.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func builtinIDs() []string {
	ids := make([]string, 0, len(catalog.Builtins()))
	for id := range catalog.Builtins() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("catalog migrations up to date")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return invalidateCatalogCache(ctx, cfg, builtinIDs())
}
