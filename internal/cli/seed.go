package cli

import (
	"context"
	"fmt"
	"log"

	"emotion-quiz-service/internal/config"
	"emotion-quiz-service/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

// NewSeedCmd writes the built-in catalogs into the configured SQLite file.
func NewSeedCmd(configPath *string) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write built-in catalogs into a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, path)
		},
	}
	cmd.Flags().StringVar(&path, "sqlite", "", "SQLite file (overrides sqlite.path)")
	return cmd
}

func runSeed(ctx context.Context, configPath, pathFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil && pathFlag == "" {
		return err
	}
	path := pathFlag
	if path == "" {
		path = cfg.SQLite.Path
	}
	if path == "" {
		return fmt.Errorf("sqlite path not configured")
	}

	store, err := sqlite.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.SeedBuiltins(ctx)
	if err != nil {
		return err
	}
	log.Printf("seeded %d catalogs into %s: %v", len(ids), path, ids)
	return invalidateCatalogCache(ctx, cfg, ids)
}
